// Package marketplace assembles the public resource listing: live offers
// from the aggregator with a local catalog fallback, spec validation,
// approval, plan gating, pricing and identity obfuscation.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gatehouse/marketplace/internal/approval"
	"github.com/gatehouse/marketplace/internal/logging"
	"github.com/gatehouse/marketplace/internal/metrics"
	"github.com/gatehouse/marketplace/internal/obfuscation"
	"github.com/gatehouse/marketplace/internal/plans"
	"github.com/gatehouse/marketplace/internal/pricing"
	"github.com/gatehouse/marketplace/internal/provider"
	"github.com/gatehouse/marketplace/internal/storage"
	"github.com/gatehouse/marketplace/internal/validation"
	"github.com/gatehouse/marketplace/pkg/models"
)

const (
	// DefaultWorkers bounds how many resources are processed in parallel
	DefaultWorkers = 8

	// DefaultCacheTTL disables live result reuse unless WithCacheTTL opts in
	DefaultCacheTTL time.Duration = 0

	fallbackNoSource = "no_source"
	fallbackNoOffers = "no_live_offers"
)

// ResourceCatalog is the local resource store consulted on fallback
type ResourceCatalog interface {
	ListResources(ctx context.Context) ([]models.ComputeResource, error)
	GetResource(ctx context.Context, id string) (*models.ComputeResource, error)
}

// PlanCatalog resolves subscription plans by ID or slug
type PlanCatalog interface {
	GetPlan(ctx context.Context, ref string) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
}

// Service builds listings and eligibility answers
type Service struct {
	source    provider.OfferSource
	resources ResourceCatalog
	plans     PlanCatalog
	ids       *obfuscation.IDObfuscator
	logger    *slog.Logger
	workers   int

	mu       sync.RWMutex
	cache    map[models.OfferFilter]*liveCache
	cacheTTL time.Duration
}

type liveCache struct {
	resources []models.ComputeResource
	expiresAt time.Time
}

// Option configures the marketplace service
type Option func(*Service)

// WithOfferSource sets the live offer source. Without one every request
// is served from the catalog.
func WithOfferSource(src provider.OfferSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithIDObfuscator sets how public IDs are derived
func WithIDObfuscator(o *obfuscation.IDObfuscator) Option {
	return func(s *Service) {
		s.ids = o
	}
}

// WithWorkers sets the size of the processing pool
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCacheTTL sets how long live results are reused. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = d
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a marketplace service over the given catalogs
func New(resources ResourceCatalog, planCatalog PlanCatalog, opts ...Option) *Service {
	s := &Service{
		resources: resources,
		plans:     planCatalog,
		ids:       obfuscation.NewIDObfuscator(""),
		logger:    slog.Default(),
		workers:   DefaultWorkers,
		cache:     make(map[models.OfferFilter]*liveCache),
		cacheTTL:  DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Resources returns raw resources for a filter: live offers when the
// aggregator has any, otherwise listable catalog entries. The caller cannot
// otherwise tell the two apart; the returned source is informational.
func (s *Service) Resources(ctx context.Context, filter models.OfferFilter) ([]models.ComputeResource, models.ResourceSource, error) {
	if live := s.liveResources(ctx, filter); len(live) > 0 {
		return live, models.SourceLive, nil
	}

	reason := fallbackNoOffers
	if s.source == nil {
		reason = fallbackNoSource
	}
	metrics.RecordFallback(reason)

	catalog, err := s.catalogResources(ctx, filter)
	if err != nil {
		return nil, models.SourceCatalog, err
	}
	return catalog, models.SourceCatalog, nil
}

func (s *Service) liveResources(ctx context.Context, filter models.OfferFilter) []models.ComputeResource {
	if s.source == nil {
		return nil
	}

	if s.cacheTTL > 0 {
		s.mu.RLock()
		cached, ok := s.cache[filter]
		s.mu.RUnlock()
		if ok && time.Now().Before(cached.expiresAt) {
			s.logger.DebugContext(ctx, "using cached live offers", slog.Int("count", len(cached.resources)))
			return cloneResources(cached.resources)
		}
	}

	live := s.fetchLive(ctx, filter)
	if len(live) > 0 && s.cacheTTL > 0 {
		s.mu.Lock()
		s.cache[filter] = &liveCache{
			resources: cloneResources(live),
			expiresAt: time.Now().Add(s.cacheTTL),
		}
		s.mu.Unlock()
	}

	return live
}

// fetchLive always asks the source, bypassing the cache
func (s *Service) fetchLive(ctx context.Context, filter models.OfferFilter) []models.ComputeResource {
	if s.source == nil {
		return nil
	}
	live := s.source.FetchResources(ctx, filter)
	for i := range live {
		live[i].Source = models.SourceLive
	}
	return live
}

// catalogResources returns active, non-blacklisted, admin-approved catalog
// entries matching the filter
func (s *Service) catalogResources(ctx context.Context, filter models.OfferFilter) ([]models.ComputeResource, error) {
	if s.resources == nil {
		return nil, ErrNoCatalog
	}

	all, err := s.resources.ListResources(ctx)
	if err != nil {
		metrics.RecordCatalogError("list")
		s.logger.ErrorContext(ctx, "catalog list failed", slog.String("error", err.Error()))
		return nil, &CatalogError{Operation: "list", Err: err}
	}

	out := make([]models.ComputeResource, 0, len(all))
	for i := range all {
		r := all[i]
		if !isListable(&r) || !filter.Matches(&r) {
			continue
		}
		r.Source = models.SourceCatalog
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func isListable(r *models.ComputeResource) bool {
	return r.IsActive && !r.IsBlacklisted && r.AdminApprovalStatus == models.ApprovalVerified
}

// InvalidateCache drops all cached live results
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[models.OfferFilter]*liveCache)
}

// ListingRequest parameterizes BuildListing
type ListingRequest struct {
	Filter models.OfferFilter
	// PlanRef is a plan ID or slug; empty skips plan evaluation
	PlanRef string
	// Hours, when positive, adds a cost estimate to every entry
	Hours float64
	// AvailableOnly drops entries that cannot be rented right now
	AvailableOnly bool
}

// Listing is one public marketplace entry
type Listing struct {
	models.ObfuscatedResource
	Plan              *plans.Decision `json:"plan,omitempty"`
	MeetsRequirements *bool           `json:"meets_plan_requirements,omitempty"`
	EstimatedCost     *float64        `json:"estimated_cost,omitempty"`
}

// ListingResult is the outcome of BuildListing
type ListingResult struct {
	Source   models.ResourceSource `json:"-"`
	Listings []Listing             `json:"resources"`
	Count    int                   `json:"count"`
	Rejected int                   `json:"-"`
}

// BuildListing runs the full pipeline over the current resource set
func (s *Service) BuildListing(ctx context.Context, req ListingRequest) (*ListingResult, error) {
	start := time.Now()

	plan, err := s.lookupPlan(ctx, req.PlanRef)
	if err != nil {
		return nil, err
	}

	resources, source, err := s.Resources(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	type slot struct {
		listing Listing
		keep    bool
	}
	slots := make([]slot, len(resources))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i := range resources {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			l, ok := s.process(ctx, &resources[i], plan, req)
			slots[i] = slot{listing: l, keep: ok}
		}(i)
	}
	wg.Wait()

	result := &ListingResult{Source: source, Listings: make([]Listing, 0, len(resources))}
	for _, sl := range slots {
		if sl.keep {
			result.Listings = append(result.Listings, sl.listing)
		} else {
			result.Rejected++
		}
	}

	sort.SliceStable(result.Listings, func(i, j int) bool {
		a, b := result.Listings[i], result.Listings[j]
		if a.HourlyPrice != b.HourlyPrice {
			return a.HourlyPrice < b.HourlyPrice
		}
		return a.ID < b.ID
	})
	result.Count = len(result.Listings)

	metrics.RecordPipelineDuration(string(source), time.Since(start))
	s.logger.DebugContext(ctx, "listing built",
		slog.String("source", string(source)),
		slog.Int("count", result.Count),
		slog.Int("rejected", result.Rejected),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// process turns one resource into a listing entry; false drops it
func (s *Service) process(ctx context.Context, r *models.ComputeResource, plan *models.SubscriptionPlan, req ListingRequest) (Listing, bool) {
	specs := validation.ValidateResourceSpecs(r)
	if !specs.Valid {
		s.logger.DebugContext(ctx, "dropping resource with invalid specs",
			slog.String("resource_id", r.ID),
			slog.Any("errors", specs.Errors))
		return Listing{}, false
	}

	obf := s.ids.ObfuscateResource(r)
	metrics.RecordResourceProcessed(string(r.Source), obf.IsAvailable)
	if req.AvailableOnly && !obf.IsAvailable {
		return Listing{}, false
	}

	l := Listing{ObfuscatedResource: obf}
	if plan != nil {
		d := plans.PlanAllowsResource(plan, r)
		meets := plans.ResourceMeetsPlanRequirements(plan, r)
		l.Plan = &d
		l.MeetsRequirements = &meets
	}
	if req.Hours > 0 {
		cost := pricing.CalculateRentalCost(r.HourlyPrice, req.Hours)
		l.EstimatedCost = &cost
	}
	return l, true
}

// FindByPublicID returns the public view of the resource with the given
// public ID, searching fresh live offers first and then listable catalog
// entries. Unlisted catalog rows are only reachable through ReviewResource.
func (s *Service) FindByPublicID(ctx context.Context, publicID string) (*models.ObfuscatedResource, error) {
	r, err := s.resolvePublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	obf := s.ids.ObfuscateResource(r)
	return &obf, nil
}

func (s *Service) resolvePublicID(ctx context.Context, publicID string) (*models.ComputeResource, error) {
	for _, r := range s.fetchLive(ctx, models.OfferFilter{}) {
		if s.ids.PublicID(r.ID) == publicID {
			r := r
			return &r, nil
		}
	}

	if s.resources == nil {
		return nil, ErrResourceNotFound
	}
	all, err := s.resources.ListResources(ctx)
	if err != nil {
		metrics.RecordCatalogError("list")
		return nil, &CatalogError{Operation: "list", Err: err}
	}
	for i := range all {
		if isListable(&all[i]) && s.ids.PublicID(all[i].ID) == publicID {
			r := all[i]
			r.Source = models.SourceCatalog
			return &r, nil
		}
	}
	return nil, ErrResourceNotFound
}

// Eligibility answers whether an account on a plan can deploy a resource
type Eligibility struct {
	ResourceID        string         `json:"resource_id"`
	Available         bool           `json:"available"`
	Plan              plans.Decision `json:"plan"`
	MeetsRequirements bool           `json:"meets_plan_requirements"`
	Eligible          bool           `json:"eligible"`
	HourlyPrice       float64        `json:"hourly_price"`
	Hours             float64        `json:"hours"`
	EstimatedCost     float64        `json:"estimated_cost"`
}

// CheckEligibility combines availability, the plan decision and a cost
// estimate for one resource identified by its public ID
func (s *Service) CheckEligibility(ctx context.Context, publicID, planRef string, hours float64) (*Eligibility, error) {
	r, err := s.resolvePublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	plan, err := s.lookupPlan(ctx, planRef)
	if err != nil {
		return nil, err
	}

	decision := plans.PlanAllowsResource(plan, r)
	meets := plans.ResourceMeetsPlanRequirements(plan, r)
	available := approval.IsResourceAvailable(r)

	e := &Eligibility{
		ResourceID:        publicID,
		Available:         available,
		Plan:              decision,
		MeetsRequirements: meets,
		Eligible:          available && meets,
		HourlyPrice:       r.HourlyPrice,
		Hours:             hours,
		EstimatedCost:     pricing.CalculateRentalCost(r.HourlyPrice, hours),
	}

	if !decision.Allowed {
		metrics.RecordPlanDenial(string(r.ResourceType), decision.SuggestedPlan)
	}

	ctx = logging.WithResourceID(ctx, r.ID)
	logging.Audit(ctx, "eligibility_check",
		slog.String("public_id", publicID),
		slog.String("plan", planRef),
		slog.Bool("available", available),
		slog.Bool("allowed", decision.Allowed),
		slog.Bool("eligible", e.Eligible))

	return e, nil
}

// Review is the admin view of one resource
type Review struct {
	PublicID string `json:"public_id"`
	approval.ReviewSummary
	Specs validation.SpecResult `json:"specs"`
}

// ReviewResource loads a catalog resource by internal ID and reports its
// approval state and spec validation
func (s *Service) ReviewResource(ctx context.Context, id string) (*Review, error) {
	if s.resources == nil {
		return nil, ErrNoCatalog
	}

	r, err := s.resources.GetResource(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		metrics.RecordCatalogError("get")
		return nil, &CatalogError{Operation: "get", Err: err}
	}

	review := &Review{
		PublicID:      s.ids.PublicID(r.ID),
		ReviewSummary: approval.Review(r),
		Specs:         validation.ValidateResourceSpecs(r),
	}

	metrics.RecordApprovalReview(string(review.OverallStatus))
	logging.Audit(logging.WithResourceID(ctx, r.ID), "resource_review",
		slog.String("overall_status", string(review.OverallStatus)),
		slog.Bool("available", review.IsAvailable),
		slog.Bool("specs_valid", review.Specs.Valid))

	return review, nil
}

// ListPlans returns all subscription plans
func (s *Service) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	if s.plans == nil {
		return nil, nil
	}
	list, err := s.plans.ListPlans(ctx)
	if err != nil {
		metrics.RecordCatalogError("list_plans")
		return nil, &CatalogError{Operation: "list_plans", Err: err}
	}
	return list, nil
}

// lookupPlan resolves a plan reference. An empty reference yields nil.
func (s *Service) lookupPlan(ctx context.Context, ref string) (*models.SubscriptionPlan, error) {
	if ref == "" || s.plans == nil {
		return nil, nil
	}
	plan, err := s.plans.GetPlan(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, ref)
	}
	if err != nil {
		metrics.RecordCatalogError("get_plan")
		return nil, &CatalogError{Operation: "get_plan", Err: err}
	}
	return plan, nil
}

func cloneResources(in []models.ComputeResource) []models.ComputeResource {
	out := make([]models.ComputeResource, len(in))
	copy(out, in)
	return out
}
