package obfuscation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObfuscateGPUModel_Known(t *testing.T) {
	tests := []struct {
		model string
		label string
		tier  string
		class string
	}{
		{"NVIDIA RTX 4090", "Gatehouse G4 Ultra", "ultra", ClassConsumer},
		{"RTX 4090", "Gatehouse G4 Ultra", "ultra", ClassConsumer},
		{"NVIDIA H100", "Gatehouse X1 Apex", "flagship", ClassDatacenter},
		{"NVIDIA A100 80GB", "Gatehouse X2 Prime", "flagship", ClassDatacenter},
		{"NVIDIA A100", "Gatehouse X3 Prime", "ultra", ClassDatacenter},
		{"AMD Instinct MI300X", "Gatehouse X1 Forge", "flagship", ClassDatacenter},
		{"NVIDIA RTX A6000", "Gatehouse W6 Pro", "pro", ClassWorkstation},
		{"NVIDIA T4", "Gatehouse E1 Core", "entry", ClassDatacenter},
		{"NVIDIA-H100", "Gatehouse X1 Apex", "flagship", ClassDatacenter},
		{"nvidia_a100_80gb", "Gatehouse X2 Prime", "flagship", ClassDatacenter},
		{"NVIDIA-RTX-4090", "Gatehouse G4 Ultra", "ultra", ClassConsumer},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.label, ObfuscateGPUModel(tt.model))
			assert.Equal(t, tt.tier, GetGPUTier(tt.model))
			assert.Equal(t, tt.class, GetGPUClass(tt.model))
		})
	}
}

func TestObfuscateGPUModel_Fallback(t *testing.T) {
	tests := []struct {
		model string
		label string
	}{
		{"NVIDIA GeForce GTX 1080", "Gatehouse GTX 1080"},
		{"AMD Radeon RX 7900 XTX", "Gatehouse RX 7900 XTX"},
		{"Intel Arc A770", "Gatehouse Arc A770"},
		{"AMD-Radeon-W7900", "Gatehouse W7900"},
		{"nvidia_a800", "Gatehouse a800"},
		{"NVIDIA-", "Gatehouse Compute GPU"},
		{"NVIDIA", "Gatehouse Compute GPU"},
		{"", "Gatehouse Compute GPU"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			label := ObfuscateGPUModel(tt.model)
			assert.Equal(t, tt.label, label)
			assert.NotContains(t, label, "NVIDIA")
			assert.NotContains(t, label, "AMD")
			assert.NotContains(t, label, "Intel")
			assert.Equal(t, "", GetGPUTier(tt.model))
			assert.Equal(t, ClassGeneral, GetGPUClass(tt.model))
		})
	}
}

func TestObfuscateGPUModel_Deterministic(t *testing.T) {
	for _, model := range []string{"NVIDIA RTX 4090", "Tesla P100", "weird-gpu"} {
		assert.Equal(t, ObfuscateGPUModel(model), ObfuscateGPUModel(model))
	}
}

func TestObfuscateCPUModel(t *testing.T) {
	tests := []struct {
		cores    int
		expected string
	}{
		{128, "Gatehouse CPU Titan"},
		{64, "Gatehouse CPU Titan"},
		{63, "Gatehouse CPU Ultra"},
		{32, "Gatehouse CPU Ultra"},
		{16, "Gatehouse CPU Pro"},
		{8, "Gatehouse CPU Plus"},
		{7, "Gatehouse CPU Core"},
		{0, "Gatehouse CPU Core"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ObfuscateCPUModel(tt.cores), "cores %d", tt.cores)
	}
}
