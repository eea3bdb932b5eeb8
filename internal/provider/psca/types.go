package psca

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Offer is one raw aggregator record. Upstream providers report numbers as
// JSON numbers or numeric strings, so decoding is lenient.
type Offer struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	GPUModel     string  `json:"gpu_model"`
	GPUCount     int     `json:"gpu_count"`
	VRAMGB       float64 `json:"vram_gb"` // GB, or MB when above 1000
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

// UnmarshalJSON decodes an offer, coercing loosely typed numeric and boolean fields
func (o *Offer) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Offer{
		ID:           cast.ToString(raw["id"]),
		Provider:     cast.ToString(raw["provider"]),
		GPUModel:     cast.ToString(raw["gpu_model"]),
		GPUCount:     cast.ToInt(raw["gpu_count"]),
		VRAMGB:       cast.ToFloat64(raw["vram_gb"]),
		CPUModel:     cast.ToString(raw["cpu_model"]),
		CPUCores:     cast.ToInt(raw["cpu_cores"]),
		RAMGB:        cast.ToFloat64(raw["ram_gb"]),
		StorageGB:    cast.ToFloat64(raw["storage_gb"]),
		StorageType:  cast.ToString(raw["storage_type"]),
		Region:       cast.ToString(raw["region"]),
		PricePerHour: cast.ToFloat64(raw["price_per_hour"]),
		Spot:         cast.ToBool(raw["spot"]),
		IPAddress:    cast.ToString(raw["ip_address"]),
		SSHPort:      cast.ToInt(raw["ssh_port"]),
	}
	return nil
}

// OffersResponse is the enveloped form of GET /offers
type OffersResponse struct {
	Offers []Offer `json:"offers"`
}

// decodeOffers accepts either a bare JSON array or {"offers": [...]}
func decodeOffers(body []byte) ([]Offer, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	switch trimmed[0] {
	case '[':
		var offers []Offer
		if err := json.Unmarshal(trimmed, &offers); err != nil {
			return nil, err
		}
		return offers, nil
	case '{':
		var resp OffersResponse
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, err
		}
		return resp.Offers, nil
	default:
		return nil, fmt.Errorf("unexpected body starting with %q", trimmed[0])
	}
}
