package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyGPUTier(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0, TierEntry},
		{39.9, TierEntry},
		{40, TierStandard},
		{50, TierStandard},
		{60, TierPro},
		{79, TierPro},
		{80, TierUltra},
		{85, TierUltra},
		{95, TierFlagship},
		{100, TierFlagship},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyGPUTier(tt.score), "score %v", tt.score)
	}
}
