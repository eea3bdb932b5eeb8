package psca

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/gatehouse/marketplace/pkg/models"
)

// UnknownGPUScore is the estimated PoW score for models missing from the table
const UnknownGPUScore = 50

// GlobalRegion is the canonical region for unmapped locations
const GlobalRegion = "Global"

// Defaults for fields the aggregator omits
const (
	defaultGPUCount    = 1
	defaultCPUCores    = 8
	defaultRAMGB       = 32
	defaultStorageGB   = 100
	defaultStorageType = "nvme"
	defaultCPUPowScore = 50
)

// vramMBThreshold separates VRAM reported in GB from VRAM reported in MB
const vramMBThreshold = 1000

type gpuPattern struct {
	pattern   string
	canonical string
	score     float64
}

// gpuModels is matched in order and the first hit wins. More specific
// patterns sit above the families they would otherwise fall into.
var gpuModels = []gpuPattern{
	{"h200", "NVIDIA H200", 100},
	{"h100", "NVIDIA H100", 100},
	{"a100 80", "NVIDIA A100 80GB", 95},
	{"a100", "NVIDIA A100", 90},
	{"mi300", "AMD Instinct MI300X", 98},
	{"mi250", "AMD Instinct MI250", 80},
	{"l40s", "NVIDIA L40S", 88},
	{"l40", "NVIDIA L40", 84},
	{"4090", "NVIDIA RTX 4090", 85},
	{"4080", "NVIDIA RTX 4080", 75},
	{"a6000", "NVIDIA RTX A6000", 78},
	{"3090", "NVIDIA RTX 3090", 70},
	{"a10", "NVIDIA A10", 65},
	{"v100", "NVIDIA V100", 60},
	{"t4", "NVIDIA T4", 40},
}

type regionPattern struct {
	pattern   string
	canonical string
}

// regions is matched in order against the lowercased raw location
var regions = []regionPattern{
	{"lagos", "Lagos"},
	{"abuja", "Abuja"},
	{"accra", "Accra"},
	{"nairobi", "Nairobi"},
	{"johannesburg", "Johannesburg"},
	{"joburg", "Johannesburg"},
	{"cape town", "Cape Town"},
	{"capetown", "Cape Town"},
	{"cairo", "Cairo"},
	{"london", "London"},
	{"eu-west", "London"},
	{"frankfurt", "Frankfurt"},
	{"eu-central", "Frankfurt"},
	{"virginia", "US East"},
	{"us-east", "US East"},
	{"us east", "US East"},
	{"oregon", "US West"},
	{"california", "US West"},
	{"us-west", "US West"},
	{"us west", "US West"},
	{"singapore", "Singapore"},
	{"ap-southeast", "Singapore"},
}

var regionCountries = map[string]string{
	"Lagos":        "Nigeria",
	"Abuja":        "Nigeria",
	"Accra":        "Ghana",
	"Nairobi":      "Kenya",
	"Johannesburg": "South Africa",
	"Cape Town":    "South Africa",
	"Cairo":        "Egypt",
	"London":       "United Kingdom",
	"Frankfurt":    "Germany",
	"US East":      "United States",
	"US West":      "United States",
	"Singapore":    "Singapore",
	GlobalRegion:   "International",
}

// offerIDNamespace seeds deterministic ids for offers that arrive without one
var offerIDNamespace = uuid.MustParse("6f1c9a52-3d4b-4e0f-9a7e-2b8d5c1e4f60")

// gpuMatchKey lowercases a model and treats '-' and '_' as spaces
func gpuMatchKey(raw string) string {
	r := strings.NewReplacer("-", " ", "_", " ")
	return strings.Join(strings.Fields(strings.ToLower(r.Replace(raw))), " ")
}

// NormalizeGPUModel maps a raw model spelling to its canonical name and
// estimated PoW score. Unknown models keep their raw text behind a vendor name.
func NormalizeGPUModel(raw string) (string, float64) {
	key := gpuMatchKey(raw)
	for _, m := range gpuModels {
		if strings.Contains(key, m.pattern) {
			return m.canonical, m.score
		}
	}

	fields := modelFields(raw)
	vendor := guessVendor(key)
	if len(fields) > 0 && strings.EqualFold(fields[0], vendor) {
		fields = fields[1:]
	}
	return strings.Join(append([]string{vendor}, fields...), " "), UnknownGPUScore
}

// modelFields splits a raw model on whitespace, '-' and '_'
func modelFields(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
}

func guessVendor(key string) string {
	switch {
	case strings.Contains(key, "amd"), strings.Contains(key, "radeon"), strings.Contains(key, "instinct"):
		return "AMD"
	case strings.Contains(key, "intel"):
		return "Intel"
	default:
		return "NVIDIA"
	}
}

// NormalizeRegion maps a free-text location to a canonical region
func NormalizeRegion(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return GlobalRegion
	}
	for _, r := range regions {
		if strings.Contains(key, r.pattern) {
			return r.canonical
		}
	}
	return GlobalRegion
}

// CountryForRegion returns the country of a canonical region
func CountryForRegion(region string) string {
	if c, ok := regionCountries[region]; ok {
		return c
	}
	return regionCountries[GlobalRegion]
}

// NormalizeVRAM converts VRAM to GB. Values above 1000 are taken as MB.
func NormalizeVRAM(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v > vramMBThreshold {
		return int(math.Round(v / 1024))
	}
	return int(math.Round(v))
}

// TransformOfferToResource converts an aggregator offer into a resource.
// It is pure: the same offer always yields the same resource. Live offers
// are vouched for by the aggregator, so every approval signal is verified.
func TransformOfferToResource(o Offer) models.ComputeResource {
	r := models.ComputeResource{
		Provider:            strings.TrimSpace(o.Provider),
		CPUModel:            strings.TrimSpace(o.CPUModel),
		CPUCores:            orDefault(o.CPUCores, defaultCPUCores),
		RAMGB:               orDefault(roundInt(o.RAMGB), defaultRAMGB),
		StorageGB:           orDefault(roundInt(o.StorageGB), defaultStorageGB),
		StorageType:         defaultStorageType,
		CPUPowScore:         defaultCPUPowScore,
		Region:              NormalizeRegion(o.Region),
		IPAddress:           strings.TrimSpace(o.IPAddress),
		SSHPort:             o.SSHPort,
		HourlyPrice:         math.Max(0, o.PricePerHour),
		IsSpot:              o.Spot,
		ValidationStatus:    models.ApprovalVerified,
		VerifierStatus:      models.ApprovalVerified,
		AdminApprovalStatus: models.ApprovalVerified,
		IsActive:            true,
		Source:              models.SourceLive,
	}
	r.Country = CountryForRegion(r.Region)
	if st := strings.ToLower(strings.TrimSpace(o.StorageType)); st != "" {
		r.StorageType = st
	}

	if strings.TrimSpace(o.GPUModel) != "" {
		r.ResourceType = models.ResourceTypeGPU
		r.GPUModel, r.GPUPowScore = NormalizeGPUModel(o.GPUModel)
		r.GPUCount = orDefault(o.GPUCount, defaultGPUCount)
		r.GPUVramGB = NormalizeVRAM(o.VRAMGB)
	} else {
		r.ResourceType = models.ResourceTypeCPU
	}

	r.ID = offerResourceID(o, r.ResourceType)
	return r
}

// offerResourceID builds an internal id carrying the resource type marker.
// Offers without an id get a name-based UUID so the id stays deterministic.
func offerResourceID(o Offer, rt models.ResourceType) string {
	id := strings.TrimSpace(o.ID)
	if id == "" {
		seed := fmt.Sprintf("%s|%s|%s|%g|%s", o.Provider, o.GPUModel, o.Region, o.PricePerHour, o.IPAddress)
		id = uuid.NewSHA1(offerIDNamespace, []byte(seed)).String()
	}
	return fmt.Sprintf("psca-%s-%s", rt, id)
}

func roundInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
