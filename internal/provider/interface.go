package provider

import (
	"context"
	"errors"

	"github.com/gatehouse/marketplace/pkg/models"
)

// Errors classifying why an offer source could not answer. They never reach
// marketplace callers; sources log them and report "unavailable".
var (
	ErrSourceRateLimit  = errors.New("offer source rate limit exceeded")
	ErrSourceAuth       = errors.New("offer source authentication failed")
	ErrSourceError      = errors.New("offer source API error")
	ErrSourceTimeout    = errors.New("offer source timed out")
	ErrInvalidResponse  = errors.New("invalid offer source response")
	ErrSourceDisabled   = errors.New("offer source disabled")
	ErrSourceNotReached = errors.New("offer source unreachable")
)

// OfferSource supplies live resources. A nil result means "unavailable" and
// tells the caller to fall back to the local catalog; an empty result is
// treated the same way.
type OfferSource interface {
	// Name returns the source identifier, used in logs and metrics
	Name() string

	// FetchResources returns live resources matching the filter, or nil
	FetchResources(ctx context.Context, filter models.OfferFilter) []models.ComputeResource
}
