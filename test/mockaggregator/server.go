package mockaggregator

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Server is the mock PSCA aggregator API server
type Server struct {
	state  *State
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new mock aggregator server
func NewServer(state *State) *Server {
	if state == nil {
		state = NewState()
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		state:  state,
		router: router,
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	s.setupRoutes()
	return s
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// State returns the underlying state for test manipulation
func (s *Server) State() *State {
	return s.state
}

func (s *Server) setupRoutes() {
	s.router.GET("/offers", s.handleListOffers)
	s.router.GET("/health", s.handleHealth)

	// Test control endpoints
	s.router.POST("/_test/reset", s.handleTestReset)
	s.router.POST("/_test/config", s.handleTestConfig)
	s.router.POST("/_test/offers", s.handleTestAddOffer)
	s.router.DELETE("/_test/offers", s.handleTestClearOffers)
}

func (s *Server) handleListOffers(c *gin.Context) {
	delay, failStatus, failMsg, envelope, apiKey := s.state.behavior()

	if apiKey != "" && c.GetHeader("Authorization") != "Bearer "+apiKey {
		c.String(http.StatusUnauthorized, "invalid api key")
		return
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	if failStatus != 0 {
		s.logger.Debug("failing offers request", "status", failStatus)
		c.String(failStatus, failMsg)
		return
	}

	q := Query{
		GPUModel: c.Query("gpu_model"),
		Region:   c.Query("region"),
		Provider: c.Query("provider"),
	}
	q.MaxPrice, _ = strconv.ParseFloat(c.Query("max_price"), 64)
	q.Limit, _ = strconv.Atoi(c.Query("limit"))

	offers := s.state.ListOffers(q)
	if envelope {
		c.JSON(http.StatusOK, gin.H{"offers": offers})
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"type":   "mock-psca-aggregator",
	})
}

// Test control handlers

func (s *Server) handleTestReset(c *gin.Context) {
	s.state.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// TestConfig is the configuration for test behavior
type TestConfig struct {
	DelayMs    int    `json:"delay_ms"`
	FailStatus int    `json:"fail_status"`
	FailMsg    string `json:"fail_msg"`
	Envelope   bool   `json:"envelope"`
	APIKey     string `json:"api_key"`
}

func (s *Server) handleTestConfig(c *gin.Context) {
	var config TestConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.state.SetDelay(time.Duration(config.DelayMs) * time.Millisecond)
	s.state.SetFailure(config.FailStatus, config.FailMsg)
	s.state.SetEnvelope(config.Envelope)
	s.state.SetAPIKey(config.APIKey)

	c.JSON(http.StatusOK, gin.H{"status": "configured"})
}

func (s *Server) handleTestAddOffer(c *gin.Context) {
	var offer Offer
	if err := c.ShouldBindJSON(&offer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if offer.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	s.state.AddOffer(&offer)
	c.JSON(http.StatusOK, gin.H{"offer_id": offer.ID})
}

func (s *Server) handleTestClearOffers(c *gin.Context) {
	s.state.ClearOffers()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// Run starts the server on the specified address
func (s *Server) Run(addr string) error {
	s.logger.Info("starting mock aggregator server", "addr", addr)
	return s.router.Run(addr)
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
