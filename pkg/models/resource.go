package models

// ResourceType distinguishes GPU machines from CPU-only machines
type ResourceType string

const (
	ResourceTypeGPU ResourceType = "gpu"
	ResourceTypeCPU ResourceType = "cpu"
)

// ApprovalStatus is the value of one of the three independent approval signals
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalVerified ApprovalStatus = "verified"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether the status is one of the known values
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalVerified, ApprovalRejected:
		return true
	default:
		return false
	}
}

// ResourceSource records where a resource record came from in a request cycle
type ResourceSource string

const (
	SourceLive    ResourceSource = "live"    // PSCA aggregator
	SourceCatalog ResourceSource = "catalog" // local catalog fallback
)

// ComputeResource is one rentable machine. It carries provider-identifying
// fields and must never be serialized to end users; see ObfuscatedResource.
type ComputeResource struct {
	ID           string       `json:"id" yaml:"id"`
	ResourceType ResourceType `json:"resource_type" yaml:"resource_type"`
	Provider     string       `json:"provider,omitempty" yaml:"provider"`

	// Hardware
	GPUModel    string  `json:"gpu_model,omitempty" yaml:"gpu_model"`
	CPUModel    string  `json:"cpu_model,omitempty" yaml:"cpu_model"`
	GPUCount    int     `json:"gpu_count" yaml:"gpu_count"`
	GPUVramGB   int     `json:"gpu_vram_gb" yaml:"gpu_vram_gb"`
	CPUCores    int     `json:"cpu_cores" yaml:"cpu_cores"`
	RAMGB       int     `json:"ram_gb" yaml:"ram_gb"`
	StorageGB   int     `json:"storage_gb" yaml:"storage_gb"`
	StorageType string  `json:"storage_type,omitempty" yaml:"storage_type"`
	CPUPowScore float64 `json:"cpu_pow_score" yaml:"cpu_pow_score"` // 0-100
	GPUPowScore float64 `json:"gpu_pow_score" yaml:"gpu_pow_score"` // 0-100

	// Location and network
	Region    string `json:"region" yaml:"region"`
	Country   string `json:"country" yaml:"country"`
	IPAddress string `json:"ip_address,omitempty" yaml:"ip_address"`
	SSHPort   int    `json:"ssh_port,omitempty" yaml:"ssh_port"`

	// Pricing
	HourlyPrice float64 `json:"hourly_price" yaml:"hourly_price"`
	IsSpot      bool    `json:"is_spot,omitempty" yaml:"is_spot"`

	// Approval: set by the automated validator, a human verifier and a platform admin
	ValidationStatus    ApprovalStatus `json:"validation_status" yaml:"validation_status"`
	VerifierStatus      ApprovalStatus `json:"verifier_status" yaml:"verifier_status"`
	AdminApprovalStatus ApprovalStatus `json:"admin_approval_status" yaml:"admin_approval_status"`

	IsBlacklisted bool    `json:"is_blacklisted" yaml:"is_blacklisted"`
	IsActive      bool    `json:"is_active" yaml:"is_active"`
	RentalUserID  *string `json:"rental_user_id,omitempty" yaml:"rental_user_id"`

	Source ResourceSource `json:"source,omitempty" yaml:"-"`
}

// IsGPU reports whether the resource is a GPU machine
func (r *ComputeResource) IsGPU() bool {
	return r.ResourceType == ResourceTypeGPU
}

// IsOccupied reports whether someone is currently renting the resource
func (r *ComputeResource) IsOccupied() bool {
	return r.RentalUserID != nil
}

// AllApprovalsVerified reports whether all three approval signals are verified
func (r *ComputeResource) AllApprovalsVerified() bool {
	return r.ValidationStatus == ApprovalVerified &&
		r.VerifierStatus == ApprovalVerified &&
		r.AdminApprovalStatus == ApprovalVerified
}

// MeetsRentalConditions is the single rentability predicate. Hard exclusions
// (blacklist, inactive, occupied) are checked before approval state.
//
// It has two call sites on purpose: the approval evaluator and the obfuscation
// boundary. Both must stay behind this function.
func MeetsRentalConditions(r *ComputeResource) bool {
	if r == nil {
		return false
	}
	if r.IsBlacklisted {
		return false
	}
	if !r.IsActive {
		return false
	}
	if r.IsOccupied() {
		return false
	}
	return r.AllApprovalsVerified()
}

// ObfuscatedResource is the externally visible form of a ComputeResource
type ObfuscatedResource struct {
	ID               string       `json:"id"`
	Type             ResourceType `json:"type"`
	GPUTier          string       `json:"gpu_tier,omitempty"`
	GPULabel         string       `json:"gpu_label,omitempty"`
	GPUClass         string       `json:"gpu_class,omitempty"`
	CPULabel         string       `json:"cpu_label"`
	GPUCount         int          `json:"gpu_count,omitempty"`
	GPUVramGB        int          `json:"gpu_vram_gb,omitempty"`
	RAMGB            int          `json:"ram_gb"`
	StorageGB        int          `json:"storage_gb"`
	StorageType      string       `json:"storage_type,omitempty"`
	Region           string       `json:"region"`
	Country          string       `json:"country"`
	Datacenter       string       `json:"datacenter"`
	MaskedIP         string       `json:"masked_ip,omitempty"`
	HourlyPrice      float64      `json:"hourly_price"`
	IsAvailable      bool         `json:"is_available"`
	PerformanceScore int          `json:"performance_score"`
}
