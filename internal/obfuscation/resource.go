package obfuscation

import (
	"math"

	"github.com/gatehouse/marketplace/internal/pricing"
	"github.com/gatehouse/marketplace/pkg/models"
)

const (
	gpuScoreWeight = 0.7
	cpuScoreWeight = 0.3
)

// CalculatePerformanceScore blends GPU and CPU PoW scores for GPU machines
// and uses the CPU score alone otherwise. The result is clamped to 0-100.
func CalculatePerformanceScore(r *models.ComputeResource) int {
	score := r.CPUPowScore
	if r.IsGPU() {
		score = r.GPUPowScore*gpuScoreWeight + r.CPUPowScore*cpuScoreWeight
	}
	return int(math.Max(0, math.Min(100, math.Round(score))))
}

var defaultObfuscator = NewIDObfuscator("")

// ObfuscateResource builds the public record for a resource using unkeyed public ids
func ObfuscateResource(r *models.ComputeResource) models.ObfuscatedResource {
	return defaultObfuscator.ObfuscateResource(r)
}

// ObfuscateResource builds the public record for a resource. It must run
// after approval and pricing, which need the real identifiers.
func (o *IDObfuscator) ObfuscateResource(r *models.ComputeResource) models.ObfuscatedResource {
	if r == nil {
		return models.ObfuscatedResource{}
	}

	out := models.ObfuscatedResource{
		ID:               o.PublicID(r.ID),
		Type:             r.ResourceType,
		CPULabel:         ObfuscateCPUModel(r.CPUCores),
		RAMGB:            r.RAMGB,
		StorageGB:        r.StorageGB,
		StorageType:      r.StorageType,
		Region:           r.Region,
		Country:          r.Country,
		Datacenter:       ObfuscateProviderName(r.Provider, r.Region),
		MaskedIP:         MaskIPAddress(r.IPAddress),
		HourlyPrice:      r.HourlyPrice,
		PerformanceScore: CalculatePerformanceScore(r),

		// Public availability is decided here, at the trust boundary,
		// through the same predicate the approval evaluator uses.
		IsAvailable: models.MeetsRentalConditions(r),
	}

	if r.IsGPU() {
		out.GPULabel = ObfuscateGPUModel(r.GPUModel)
		out.GPUClass = GetGPUClass(r.GPUModel)
		out.GPUTier = GetGPUTier(r.GPUModel)
		if out.GPUTier == "" {
			out.GPUTier = pricing.ClassifyGPUTier(r.GPUPowScore)
		}
		out.GPUCount = r.GPUCount
		out.GPUVramGB = r.GPUVramGB
	}

	return out
}
