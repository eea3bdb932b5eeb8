package pricing

// Performance tiers derived from a 0-100 PoW score
const (
	TierEntry    = "entry"
	TierStandard = "standard"
	TierPro      = "pro"
	TierUltra    = "ultra"
	TierFlagship = "flagship"
)

// ClassifyGPUTier maps a GPU PoW score to a performance tier
func ClassifyGPUTier(score float64) string {
	switch {
	case score < 40:
		return TierEntry
	case score < 60:
		return TierStandard
	case score < 80:
		return TierPro
	case score < 95:
		return TierUltra
	default:
		return TierFlagship
	}
}
