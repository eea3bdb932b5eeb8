package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse/marketplace/internal/pricing"
	"github.com/gatehouse/marketplace/internal/service/marketplace"
	"github.com/gatehouse/marketplace/internal/validation"
	"github.com/gatehouse/marketplace/pkg/models"
)

// Request/Response types

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// ReadyResponse is the readiness check response
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
}

// CostRequest is the request to estimate a rental cost
type CostRequest struct {
	HourlyPrice *float64 `json:"hourly_price" binding:"required"`
	Hours       *float64 `json:"hours" binding:"required"`
}

// CostResponse is the rental cost estimate
type CostResponse struct {
	HourlyPrice float64 `json:"hourly_price"`
	Hours       float64 `json:"hours"`
	Total       float64 `json:"total"`
}

// SuggestedPriceResponse is the suggested price band for a GPU model
type SuggestedPriceResponse struct {
	GPUModel string `json:"gpu_model"`
	pricing.PriceRange
}

// SSHKeyRequest is the request to validate a public key
type SSHKeyRequest struct {
	PublicKey string `json:"public_key" binding:"required"`
}

// SSHKeyResponse reports the outcome of public key validation
type SSHKeyResponse struct {
	Valid bool                      `json:"valid"`
	Key   *validation.PublicKeyInfo `json:"key,omitempty"`
	Error string                    `json:"error,omitempty"`
}

// Handlers

func (s *Server) handleHealth(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	if s.marketplace != nil {
		response.Services["marketplace"] = "ok"
	}

	// Return 503 if not ready (e.g., while the catalog is being seeded)
	if !s.ready.Load() {
		response.Status = "unavailable"
		response.Services["ready"] = "false"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.Services["ready"] = "true"
	c.JSON(http.StatusOK, response)
}

func (s *Server) handleReady(c *gin.Context) {
	response := ReadyResponse{
		Ready:     s.ready.Load(),
		Timestamp: time.Now(),
	}

	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleListResources(c *gin.Context) {
	ctx := c.Request.Context()

	req := marketplace.ListingRequest{
		Filter: models.OfferFilter{
			GPUModel: c.Query("gpu_model"),
			Region:   c.Query("region"),
			Provider: c.Query("provider"),
		},
		PlanRef: c.Query("plan"),
	}

	// Validate numeric params - return 400 for invalid values
	var ok bool
	if req.Filter.MaxPrice, ok = s.nonNegativeFloatQuery(c, "max_price"); !ok {
		return
	}
	if req.Hours, ok = s.nonNegativeFloatQuery(c, "hours"); !ok {
		return
	}
	if limit := c.Query("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v < 0 {
			s.badRequest(c, fmt.Sprintf("invalid limit: must be a non-negative integer, got %q", limit))
			return
		}
		req.Filter.Limit = v
	}
	if availableOnly := c.Query("available_only"); availableOnly != "" {
		v, err := strconv.ParseBool(availableOnly)
		if err != nil {
			s.badRequest(c, fmt.Sprintf("invalid available_only: must be a boolean, got %q", availableOnly))
			return
		}
		req.AvailableOnly = v
	}

	result, err := s.marketplace.BuildListing(ctx, req)
	if err != nil {
		s.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetResource(c *gin.Context) {
	resource, err := s.marketplace.FindByPublicID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

func (s *Server) handleCheckEligibility(c *gin.Context) {
	ctx := c.Request.Context()

	// An explicit plan query wins over the token's plan claim
	plan := c.Query("plan")
	if plan == "" {
		plan = c.GetString(ctxPlan)
	}

	hours := 1.0
	if h := c.Query("hours"); h != "" {
		v, ok := s.nonNegativeFloatQuery(c, "hours")
		if !ok {
			return
		}
		hours = v
	}

	eligibility, err := s.marketplace.CheckEligibility(ctx, c.Param("id"), plan, hours)
	if err != nil {
		s.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, eligibility)
}

func (s *Server) handleListPlans(c *gin.Context) {
	plans, err := s.marketplace.ListPlans(c.Request.Context())
	if err != nil {
		s.serviceError(c, err)
		return
	}
	if plans == nil {
		plans = []models.SubscriptionPlan{}
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"count": len(plans),
	})
}

func (s *Server) handleCalculateCost(c *gin.Context) {
	var req CostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, sanitizeValidationError(err))
		return
	}

	c.JSON(http.StatusOK, CostResponse{
		HourlyPrice: *req.HourlyPrice,
		Hours:       *req.Hours,
		Total:       pricing.CalculateRentalCost(*req.HourlyPrice, *req.Hours),
	})
}

func (s *Server) handleSuggestedPrice(c *gin.Context) {
	model := c.Query("gpu_model")
	if strings.TrimSpace(model) == "" {
		s.badRequest(c, "gpu_model is required")
		return
	}

	c.JSON(http.StatusOK, SuggestedPriceResponse{
		GPUModel:   model,
		PriceRange: pricing.SuggestedPrice(model),
	})
}

func (s *Server) handleValidateSpecs(c *gin.Context) {
	var in validation.SpecInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, sanitizeValidationError(err))
		return
	}

	c.JSON(http.StatusOK, validation.ValidateSpecs(in))
}

func (s *Server) handleValidateConnection(c *gin.Context) {
	var cfg validation.ConnectionConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		s.badRequest(c, sanitizeValidationError(err))
		return
	}

	c.JSON(http.StatusOK, validation.ValidateConnection(cfg))
}

func (s *Server) handleValidateSSHKey(c *gin.Context) {
	var req SSHKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, sanitizeValidationError(err))
		return
	}

	info, err := validation.ValidateSSHPublicKey(req.PublicKey)
	if err != nil {
		c.JSON(http.StatusOK, SSHKeyResponse{Valid: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SSHKeyResponse{Valid: true, Key: info})
}

func (s *Server) handleReviewResource(c *gin.Context) {
	review, err := s.marketplace.ReviewResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

func (s *Server) handleInvalidateCache(c *gin.Context) {
	s.marketplace.InvalidateCache()
	c.Status(http.StatusNoContent)
}

// Helpers

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     msg,
		RequestID: c.GetString("request_id"),
	})
}

// nonNegativeFloatQuery parses an optional query parameter. On failure it
// writes a 400 and returns false.
func (s *Server) nonNegativeFloatQuery(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.badRequest(c, fmt.Sprintf("invalid %s: must be a valid number, got %q", name, raw))
		return 0, false
	}
	if v < 0 {
		s.badRequest(c, fmt.Sprintf("invalid %s: must be non-negative, got %v", name, v))
		return 0, false
	}
	return v, true
}

// serviceError maps marketplace errors to HTTP statuses. Catalog failures
// are logged but not echoed to the client.
func (s *Server) serviceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	var catErr *marketplace.CatalogError
	switch {
	case errors.Is(err, marketplace.ErrResourceNotFound):
		status, msg = http.StatusNotFound, "resource not found"
	case errors.Is(err, marketplace.ErrPlanNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, marketplace.ErrNoCatalog), errors.As(err, &catErr):
		status, msg = http.StatusServiceUnavailable, "catalog unavailable"
	}

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()))
	}

	c.JSON(status, ErrorResponse{
		Error:     msg,
		RequestID: c.GetString("request_id"),
	})
}

// sanitizeValidationError converts binding errors to messages keyed by
// JSON field names
func sanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request body"
	}

	var messages []string
	for _, fe := range validationErrs {
		field := toSnakeCase(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed validation (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}

var fieldMappings = map[string]string{
	"HourlyPrice": "hourly_price",
	"Hours":       "hours",
	"PublicKey":   "public_key",
}

// toSnakeCase maps request struct field names to their JSON names
func toSnakeCase(s string) string {
	if mapped, ok := fieldMappings[s]; ok {
		return mapped
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
