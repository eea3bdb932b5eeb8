// Package psca is the client for the PSCA offer aggregator. The aggregator
// is optional: every failure is logged, counted and reported as "no data" so
// callers can fall back to the local catalog.
package psca

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gatehouse/marketplace/internal/metrics"
	"github.com/gatehouse/marketplace/internal/provider"
	"github.com/gatehouse/marketplace/pkg/models"
)

const (
	sourceName = "psca"

	// DefaultTimeout bounds a single fetch, including rate limiter waits
	DefaultTimeout = 5 * time.Second

	defaultRateLimit = 5
	defaultBurst     = 10
	defaultLimit     = 100

	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 8 << 20
	// maxErrorBody caps the body excerpt kept in error messages
	maxErrorBody = 512
)

// Client fetches live offers from the aggregator
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	timeout      time.Duration
	defaultLimit int
	logger       *slog.Logger
}

// ClientOption configures the aggregator client
type ClientOption func(*Client)

// WithAPIKey sets the bearer token sent to the aggregator
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-fetch timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit sets the outbound request rate and burst
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithDefaultLimit sets the limit sent when a filter does not specify one
func WithDefaultLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.defaultLimit = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an aggregator client. An empty baseURL yields a client
// that always reports the aggregator as unavailable.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		timeout:      DefaultTimeout,
		defaultLimit: defaultLimit,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ provider.OfferSource = (*Client)(nil)

// Name returns the source identifier
func (c *Client) Name() string {
	return sourceName
}

// FetchOffers returns live offers, or nil when the aggregator is
// unavailable or has nothing to offer. It never returns an error.
func (c *Client) FetchOffers(ctx context.Context, filter models.OfferFilter) []Offer {
	start := time.Now()
	offers, err := c.fetch(ctx, filter)
	elapsed := time.Since(start)

	outcome := classifyOutcome(err, len(offers))
	metrics.RecordAggregatorFetch(outcome, elapsed, len(offers))

	if err != nil {
		c.logger.WarnContext(ctx, "aggregator unavailable, using local catalog",
			slog.String("source", sourceName),
			slog.String("outcome", outcome),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		return nil
	}
	if len(offers) == 0 {
		c.logger.InfoContext(ctx, "aggregator returned no offers",
			slog.String("source", sourceName),
			slog.Duration("elapsed", elapsed))
		return nil
	}

	c.logger.DebugContext(ctx, "aggregator offers fetched",
		slog.String("source", sourceName),
		slog.Int("count", len(offers)),
		slog.Duration("elapsed", elapsed))
	return offers
}

// FetchResources fetches live offers and transforms them into resources
func (c *Client) FetchResources(ctx context.Context, filter models.OfferFilter) []models.ComputeResource {
	offers := c.FetchOffers(ctx, filter)
	if offers == nil {
		return nil
	}

	resources := make([]models.ComputeResource, 0, len(offers))
	for _, o := range offers {
		resources = append(resources, TransformOfferToResource(o))
	}
	return resources
}

func (c *Client) fetch(ctx context.Context, filter models.OfferFilter) ([]Offer, error) {
	if c.baseURL == "" {
		return nil, provider.ErrSourceDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", provider.ErrSourceTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", provider.ErrSourceRateLimit, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.offersURL(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", provider.ErrSourceTimeout, ctx.Err())
		}
		return nil, provider.NewSourceError(sourceName, "FetchOffers", 0, err.Error(), provider.ErrSourceNotReached)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", provider.ErrSourceTimeout, ctx.Err())
		}
		return nil, provider.NewSourceError(sourceName, "FetchOffers", 0, err.Error(), provider.ErrSourceNotReached)
	}

	offers, err := decodeOffers(body)
	if err != nil {
		return nil, provider.NewSourceError(sourceName, "FetchOffers", 0,
			"failed to decode response: "+err.Error(), provider.ErrInvalidResponse)
	}
	return offers, nil
}

func (c *Client) offersURL(filter models.OfferFilter) string {
	q := url.Values{}
	if filter.GPUModel != "" {
		q.Set("gpu_model", filter.GPUModel)
	}
	if filter.Region != "" {
		q.Set("region", filter.Region)
	}
	if filter.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(filter.MaxPrice, 'f', -1, 64))
	}
	if filter.Provider != "" {
		q.Set("provider", filter.Provider)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = c.defaultLimit
	}
	q.Set("limit", strconv.Itoa(limit))

	return c.baseURL + "/offers?" + q.Encode()
}

// handleError converts HTTP errors to source errors
func (c *Client) handleError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return provider.NewSourceError(sourceName, "FetchOffers", resp.StatusCode,
		strings.TrimSpace(string(body)), provider.SentinelForStatus(resp.StatusCode))
}

func classifyOutcome(err error, offers int) string {
	switch {
	case err == nil && offers == 0:
		return metrics.OutcomeEmpty
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, provider.ErrSourceDisabled):
		return metrics.OutcomeDisabled
	case provider.IsTimeoutError(err):
		return metrics.OutcomeTimeout
	case provider.IsRateLimitError(err):
		return metrics.OutcomeRateLimited
	case errors.Is(err, provider.ErrInvalidResponse):
		return metrics.OutcomeDecodeError
	case errors.Is(err, provider.ErrSourceNotReached):
		return metrics.OutcomeNetwork
	default:
		return metrics.OutcomeHTTPError
	}
}
