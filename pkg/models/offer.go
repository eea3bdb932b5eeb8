package models

import "strings"

// OfferFilter defines criteria for fetching and filtering marketplace offers.
// Field names follow the aggregator's query parameters.
type OfferFilter struct {
	GPUModel string  `json:"gpu_model,omitempty" form:"gpu_model"`
	Region   string  `json:"region,omitempty" form:"region"`
	MaxPrice float64 `json:"max_price,omitempty" form:"max_price"`
	Provider string  `json:"provider,omitempty" form:"provider"`
	Limit    int     `json:"limit,omitempty" form:"limit"`
}

// Matches checks if the resource satisfies the filter. GPU model and region
// use case-insensitive substring matching, mirroring the aggregator.
func (f OfferFilter) Matches(r *ComputeResource) bool {
	if f.GPUModel != "" && !containsFold(r.GPUModel, f.GPUModel) {
		return false
	}
	if f.Region != "" && !containsFold(r.Region, f.Region) {
		return false
	}
	if f.MaxPrice > 0 && r.HourlyPrice > f.MaxPrice {
		return false
	}
	if f.Provider != "" && !containsFold(r.Provider, f.Provider) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
