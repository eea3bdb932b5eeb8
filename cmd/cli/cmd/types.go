package cmd

import (
	"github.com/gatehouse/marketplace/internal/service/marketplace"
	"github.com/gatehouse/marketplace/pkg/models"
)

// Re-export API types for CLI use
type (
	Listing = marketplace.Listing
	Plan    = models.SubscriptionPlan
	Review  = marketplace.Review
)

// ListingsResponse is the body of GET /api/v1/resources
type ListingsResponse struct {
	Resources []Listing `json:"resources"`
	Count     int       `json:"count"`
}

// PlansResponse is the body of GET /api/v1/plans
type PlansResponse struct {
	Plans []Plan `json:"plans"`
	Count int    `json:"count"`
}
