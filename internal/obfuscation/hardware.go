package obfuscation

import (
	"strings"
	"unicode"
)

// GPU classes
const (
	ClassDatacenter  = "datacenter"
	ClassWorkstation = "workstation"
	ClassConsumer    = "consumer"
	ClassGeneral     = "general"
)

type gpuBrand struct {
	label string
	tier  string
	class string
}

// gpuBrands is keyed by the vendor-stripped lowercase model name
var gpuBrands = map[string]gpuBrand{
	"h200":      {"Gatehouse X0 Apex", "flagship", ClassDatacenter},
	"h100":      {"Gatehouse X1 Apex", "flagship", ClassDatacenter},
	"a100 80gb": {"Gatehouse X2 Prime", "flagship", ClassDatacenter},
	"a100":      {"Gatehouse X3 Prime", "ultra", ClassDatacenter},
	"mi300x":    {"Gatehouse X1 Forge", "flagship", ClassDatacenter},
	"mi250":     {"Gatehouse X4 Forge", "ultra", ClassDatacenter},
	"l40s":      {"Gatehouse L4 Pro", "ultra", ClassDatacenter},
	"l40":       {"Gatehouse L3 Pro", "pro", ClassDatacenter},
	"rtx 4090":  {"Gatehouse G4 Ultra", "ultra", ClassConsumer},
	"rtx 4080":  {"Gatehouse G3 Ultra", "pro", ClassConsumer},
	"rtx a6000": {"Gatehouse W6 Pro", "pro", ClassWorkstation},
	"rtx 3090":  {"Gatehouse G2 Plus", "standard", ClassConsumer},
	"a10":       {"Gatehouse D1 Plus", "standard", ClassDatacenter},
	"v100":      {"Gatehouse D0 Classic", "standard", ClassDatacenter},
	"t4":        {"Gatehouse E1 Core", "entry", ClassDatacenter},
}

// vendorTokens never appear in a public label
var vendorTokens = map[string]bool{
	"nvidia":   true,
	"geforce":  true,
	"amd":      true,
	"radeon":   true,
	"tesla":    true,
	"intel":    true,
	"instinct": true,
	"quadro":   true,
}

const (
	brandPrefix     = "Gatehouse"
	genericGPULabel = "Gatehouse Compute GPU"
)

// modelFields splits a model on whitespace, '-' and '_'
func modelFields(model string) []string {
	return strings.FieldsFunc(model, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
}

// stripVendor removes vendor tokens, preserving the case of what remains
func stripVendor(model string) []string {
	fields := modelFields(model)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if !vendorTokens[strings.ToLower(f)] {
			kept = append(kept, f)
		}
	}
	return kept
}

func lookupGPU(model string) (gpuBrand, bool) {
	key := strings.ToLower(strings.Join(stripVendor(model), " "))
	b, ok := gpuBrands[key]
	return b, ok
}

// ObfuscateGPUModel returns the branded label for a GPU model. Unknown
// models are labelled with their vendor tokens removed.
func ObfuscateGPUModel(model string) string {
	if b, ok := lookupGPU(model); ok {
		return b.label
	}
	rest := stripVendor(model)
	if len(rest) == 0 {
		return genericGPULabel
	}
	return brandPrefix + " " + strings.Join(rest, " ")
}

// GetGPUTier returns the branded tier of a known model, or "" if unknown
func GetGPUTier(model string) string {
	if b, ok := lookupGPU(model); ok {
		return b.tier
	}
	return ""
}

// GetGPUClass returns the market class of a GPU model
func GetGPUClass(model string) string {
	if b, ok := lookupGPU(model); ok {
		return b.class
	}
	return ClassGeneral
}

// ObfuscateCPUModel labels a CPU by core count instead of model name
func ObfuscateCPUModel(cores int) string {
	switch {
	case cores >= 64:
		return "Gatehouse CPU Titan"
	case cores >= 32:
		return "Gatehouse CPU Ultra"
	case cores >= 16:
		return "Gatehouse CPU Pro"
	case cores >= 8:
		return "Gatehouse CPU Plus"
	default:
		return "Gatehouse CPU Core"
	}
}
