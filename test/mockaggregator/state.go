package mockaggregator

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Offer is a mock aggregator offer in wire format
type Offer struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	GPUModel     string  `json:"gpu_model"`
	GPUCount     int     `json:"gpu_count"`
	VRAMGB       float64 `json:"vram_gb"`
	CPUModel     string  `json:"cpu_model,omitempty"`
	CPUCores     int     `json:"cpu_cores"`
	RAMGB        float64 `json:"ram_gb"`
	StorageGB    float64 `json:"storage_gb"`
	StorageType  string  `json:"storage_type,omitempty"`
	Region       string  `json:"region"`
	PricePerHour float64 `json:"price_per_hour"`
	Spot         bool    `json:"spot"`
	IPAddress    string  `json:"ip_address,omitempty"`
	SSHPort      int     `json:"ssh_port,omitempty"`
}

// Query holds the filters accepted by GET /offers
type Query struct {
	GPUModel string
	Region   string
	Provider string
	MaxPrice float64
	Limit    int
}

// State manages the in-memory state for the mock aggregator
type State struct {
	mu     sync.RWMutex
	offers map[string]*Offer

	// Configuration for testing
	delay      time.Duration
	failStatus int
	failMsg    string
	envelope   bool
	apiKey     string
	requests   int
}

// NewState creates a new mock aggregator state
func NewState() *State {
	s := &State{offers: make(map[string]*Offer)}
	s.initDefaultOffers()
	return s
}

// initDefaultOffers creates a small spread of GPU and CPU offers
func (s *State) initDefaultOffers() {
	s.offers = map[string]*Offer{
		"psca-4090-lagos": {
			ID: "psca-4090-lagos", Provider: "acme-cloud",
			GPUModel: "NVIDIA GeForce RTX 4090", GPUCount: 1, VRAMGB: 24,
			CPUModel: "AMD EPYC 7543", CPUCores: 16, RAMGB: 64, StorageGB: 500, StorageType: "nvme",
			Region: "lagos", PricePerHour: 0.74,
			IPAddress: "102.89.34.12", SSHPort: 22,
		},
		"psca-a100-nairobi": {
			ID: "psca-a100-nairobi", Provider: "savanna-compute",
			GPUModel: "A100 SXM4 80GB", GPUCount: 2, VRAMGB: 81920,
			CPUCores: 32, RAMGB: 256, StorageGB: 2000, StorageType: "nvme",
			Region: "nairobi", PricePerHour: 3.20,
			IPAddress: "41.90.64.7", SSHPort: 2222,
		},
		"psca-h100-jnb": {
			ID: "psca-h100-jnb", Provider: "acme-cloud",
			GPUModel: "H100 PCIe", GPUCount: 1, VRAMGB: 80,
			CPUCores: 24, RAMGB: 128, StorageGB: 1000,
			Region: "johannesburg", PricePerHour: 2.85, Spot: true,
		},
		"psca-cpu-accra": {
			ID: "psca-cpu-accra", Provider: "savanna-compute",
			CPUModel: "Intel Xeon Gold 6338", CPUCores: 32, RAMGB: 128, StorageGB: 500,
			Region: "accra", PricePerHour: 0.35,
		},
	}
}

// ListOffers returns offers matching q, cheapest first
func (s *State) ListOffers(q Query) []*Offer {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Offer, 0, len(s.offers))
	for _, o := range s.offers {
		if !q.matches(o) {
			continue
		}
		copied := *o
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PricePerHour != result[j].PricePerHour {
			return result[i].PricePerHour < result[j].PricePerHour
		}
		return result[i].ID < result[j].ID
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result
}

func (q Query) matches(o *Offer) bool {
	if q.GPUModel != "" && !containsFold(o.GPUModel, q.GPUModel) {
		return false
	}
	if q.Region != "" && !containsFold(o.Region, q.Region) {
		return false
	}
	if q.Provider != "" && !containsFold(o.Provider, q.Provider) {
		return false
	}
	if q.MaxPrice > 0 && o.PricePerHour > q.MaxPrice {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// AddOffer adds or replaces an offer
func (s *State) AddOffer(offer *Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[offer.ID] = offer
}

// ClearOffers removes every offer
func (s *State) ClearOffers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = make(map[string]*Offer)
}

// SetDelay delays every offers response
func (s *State) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetFailure makes GET /offers fail with status; zero clears it
func (s *State) SetFailure(status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failMsg = msg
}

// SetEnvelope switches between a bare array and {"offers": [...]}
func (s *State) SetEnvelope(envelope bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = envelope
}

// SetAPIKey requires a bearer token when set
func (s *State) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// Requests returns the number of offer listings served
func (s *State) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

// behavior returns the current test configuration
func (s *State) behavior() (delay time.Duration, failStatus int, failMsg string, envelope bool, apiKey string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delay, s.failStatus, s.failMsg, s.envelope, s.apiKey
}

// Reset restores default offers and clears test configuration
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initDefaultOffers()
	s.delay = 0
	s.failStatus = 0
	s.failMsg = ""
	s.envelope = false
	s.apiKey = ""
	s.requests = 0
}
