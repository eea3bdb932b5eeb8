// Package validation checks candidate hardware specs and connection
// parameters submitted for onboarding. Every check runs; problems are
// accumulated and returned, never raised.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/gatehouse/marketplace/pkg/models"
)

const (
	MinCPUCoresWarn = 2
	MaxCPUCoresWarn = 256
	MinRAMGB        = 1
	MinRAMGBWarn    = 4
	MaxRAMGBWarn    = 2048
	MinStorageGB    = 1
	MinStorageWarn  = 20
	MinVRAMGB       = 1
	MaxVRAMGBWarn   = 80

	// highVRAMModelIndicator marks the only known model family shipping more than 80GB per card
	highVRAMModelIndicator = "H200"
)

// SpecInput is a candidate hardware spec. Pointer fields are optional;
// nil means "not provided" and skips the corresponding check.
type SpecInput struct {
	CPUCores  float64  `json:"cpu_cores"`
	RAMGB     float64  `json:"ram_gb"`
	StorageGB float64  `json:"storage_gb"`
	GPUVramGB *float64 `json:"gpu_vram_gb,omitempty"`
	GPUModel  *string  `json:"gpu_model,omitempty"`
}

// SpecResult is the outcome of ValidateSpecs. Warnings never affect Valid.
type SpecResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateSpecs checks cores, RAM, storage, VRAM and GPU model independently
func ValidateSpecs(in SpecInput) SpecResult {
	res := SpecResult{Errors: []string{}, Warnings: []string{}}

	// CPU cores
	if !isPositiveInteger(in.CPUCores) {
		res.Errors = append(res.Errors, "cpu_cores must be a positive integer")
	} else {
		if in.CPUCores < MinCPUCoresWarn {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("cpu_cores %v is below %d; most workloads will be CPU-starved", in.CPUCores, MinCPUCoresWarn))
		}
		if in.CPUCores > MaxCPUCoresWarn {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("cpu_cores %v exceeds %d; please confirm the reported value", in.CPUCores, MaxCPUCoresWarn))
		}
	}

	// RAM
	if !isFinite(in.RAMGB) || in.RAMGB < MinRAMGB {
		res.Errors = append(res.Errors, fmt.Sprintf("ram_gb must be at least %dGB", MinRAMGB))
	} else {
		if in.RAMGB < MinRAMGBWarn {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("ram_gb %v is below %dGB", in.RAMGB, MinRAMGBWarn))
		}
		if in.RAMGB > MaxRAMGBWarn {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("ram_gb %v exceeds %dGB; please confirm the reported value", in.RAMGB, MaxRAMGBWarn))
		}
	}

	// Storage
	if !isFinite(in.StorageGB) || in.StorageGB < MinStorageGB {
		res.Errors = append(res.Errors, fmt.Sprintf("storage_gb must be at least %dGB", MinStorageGB))
	} else if in.StorageGB < MinStorageWarn {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("storage_gb %v is below %dGB; OS images and datasets may not fit", in.StorageGB, MinStorageWarn))
	}

	// GPU VRAM
	if in.GPUVramGB != nil {
		vram := *in.GPUVramGB
		if !isFinite(vram) || vram < MinVRAMGB {
			res.Errors = append(res.Errors, fmt.Sprintf("gpu_vram_gb must be at least %dGB", MinVRAMGB))
		} else if vram > MaxVRAMGBWarn && !modelHasHighVRAM(in.GPUModel) {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("gpu_vram_gb %v exceeds %dGB for a model without known high-VRAM support", vram, MaxVRAMGBWarn))
		}
	}

	// GPU model
	if in.GPUModel != nil && strings.TrimSpace(*in.GPUModel) == "" {
		res.Errors = append(res.Errors, "gpu_model cannot be empty")
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateResourceSpecs validates the hardware fields of a resource record.
// GPU model is treated as provided for GPU resources, or whenever set. A zero
// VRAM means the source did not report it and skips the VRAM check.
func ValidateResourceSpecs(r *models.ComputeResource) SpecResult {
	in := SpecInput{
		CPUCores:  float64(r.CPUCores),
		RAMGB:     float64(r.RAMGB),
		StorageGB: float64(r.StorageGB),
	}
	if r.GPUVramGB != 0 {
		vram := float64(r.GPUVramGB)
		in.GPUVramGB = &vram
	}
	if r.IsGPU() || r.GPUModel != "" {
		model := r.GPUModel
		in.GPUModel = &model
	}
	return ValidateSpecs(in)
}

func modelHasHighVRAM(model *string) bool {
	if model == nil {
		return false
	}
	return strings.Contains(strings.ToUpper(*model), highVRAMModelIndicator)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isPositiveInteger(f float64) bool {
	return isFinite(f) && f > 0 && math.Trunc(f) == f
}
