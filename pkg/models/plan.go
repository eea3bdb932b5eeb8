package models

// SubscriptionPlan is a billing plan definition. The marketplace core only
// reads plans; billing configuration owns their lifecycle.
type SubscriptionPlan struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Slug         string  `json:"slug" yaml:"slug"` // "free", "starter", "pro", "enterprise"
	PriceMonthly float64 `json:"price_monthly" yaml:"price_monthly"`

	// Access tiers: "none"/"0", "entry"/"basic"/"1", "standard"/"2", "all"/"3"
	AllowedGPUAccess string `json:"allowed_gpu_access" yaml:"allowed_gpu_access"`
	AllowedCPUAccess string `json:"allowed_cpu_access" yaml:"allowed_cpu_access"`

	// Ceilings; zero or negative means no ceiling
	MaxCPUCores  int `json:"max_cpu_cores" yaml:"max_cpu_cores"`
	MaxGPUCount  int `json:"max_gpu_count" yaml:"max_gpu_count"`
	MaxRAMGB     int `json:"max_ram_gb" yaml:"max_ram_gb"`
	MaxStorageGB int `json:"max_storage_gb" yaml:"max_storage_gb"`

	// Performance floors on the 0-100 PoW scale; zero means no floor
	MinCPUPowScore float64 `json:"min_cpu_pow_score" yaml:"min_cpu_pow_score"`
	MinGPUPowScore float64 `json:"min_gpu_pow_score" yaml:"min_gpu_pow_score"`
}
