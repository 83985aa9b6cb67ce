package model

import (
	"math"
	"strings"
)

// HeatStream is a network-level stream used for pinch analysis. Heat
// quantities derived from it are in kJ/h.
type HeatStream struct {
	ID             string  `json:"stream_id" yaml:"stream_id"`
	Name           string  `json:"name" yaml:"name"`
	TemperatureIn  float64 `json:"temperature_in" yaml:"temperature_in"`
	TemperatureOut float64 `json:"temperature_out" yaml:"temperature_out"`
	FlowRate       float64 `json:"flow_rate" yaml:"flow_rate"`         // kg/h
	HeatCapacity   float64 `json:"heat_capacity" yaml:"heat_capacity"` // kJ/(kg·°C)
}

// IsHot reports whether the stream releases heat.
func (h HeatStream) IsHot() bool { return h.TemperatureIn > h.TemperatureOut }

// IsCold reports whether the stream absorbs heat.
func (h HeatStream) IsCold() bool { return h.TemperatureIn < h.TemperatureOut }

// CP returns the heat capacity flow rate in kJ/(h·°C).
func (h HeatStream) CP() float64 { return h.FlowRate * h.HeatCapacity }

// Duty returns flow × cp × (Tout − Tin); negative for hot streams.
func (h HeatStream) Duty() float64 {
	return h.CP() * (h.TemperatureOut - h.TemperatureIn)
}

// Span returns the lower and upper temperatures of the stream.
func (h HeatStream) Span() (lo, hi float64) {
	return math.Min(h.TemperatureIn, h.TemperatureOut), math.Max(h.TemperatureIn, h.TemperatureOut)
}

// Validate checks the fields a heat stream must carry.
func (h HeatStream) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return invalid("heat stream", h.ID, "stream_id", "required")
	}
	if h.FlowRate < 0 {
		return invalid("heat stream", h.ID, "flow_rate", "must not be negative, got %g", h.FlowRate)
	}
	if h.HeatCapacity < 0 {
		return invalid("heat stream", h.ID, "heat_capacity", "must not be negative, got %g", h.HeatCapacity)
	}
	return nil
}

// ExchangerType is the construction of a heat exchanger.
type ExchangerType string

const (
	ExchangerShellTube  ExchangerType = "shell_tube"
	ExchangerPlate      ExchangerType = "plate"
	ExchangerAirCooled  ExchangerType = "air_cooled"
	ExchangerSpiral     ExchangerType = "spiral"
	ExchangerDoublePipe ExchangerType = "double_pipe"
)

// DefaultFoulingFactor is applied when an exchanger has none, in m²·°C/W.
const DefaultFoulingFactor = 0.0001

// HeatExchanger pairs a hot and a cold heat stream.
type HeatExchanger struct {
	ID            string        `json:"exchanger_id" yaml:"exchanger_id"`
	Name          string        `json:"name" yaml:"name"`
	Type          ExchangerType `json:"type" yaml:"type"`
	HotStream     string        `json:"hot_stream" yaml:"hot_stream"`
	ColdStream    string        `json:"cold_stream" yaml:"cold_stream"`
	UValue        float64       `json:"u_value" yaml:"u_value"` // W/(m²·°C)
	Area          float64       `json:"area" yaml:"area"`       // m²
	FoulingFactor float64       `json:"fouling_factor,omitempty" yaml:"fouling_factor,omitempty"`
}

// Fouling returns the fouling factor, substituting the default for zero.
func (x HeatExchanger) Fouling() float64 {
	if x.FoulingFactor <= 0 {
		return DefaultFoulingFactor
	}
	return x.FoulingFactor
}

// Validate checks the fields an exchanger must carry.
func (x HeatExchanger) Validate() error {
	if strings.TrimSpace(x.ID) == "" {
		return invalid("heat exchanger", x.ID, "exchanger_id", "required")
	}
	switch x.Type {
	case ExchangerShellTube, ExchangerPlate, ExchangerAirCooled, ExchangerSpiral, ExchangerDoublePipe:
	default:
		return invalid("heat exchanger", x.ID, "type", "unknown type %q", x.Type)
	}
	if x.HotStream == "" || x.ColdStream == "" {
		return invalid("heat exchanger", x.ID, "streams", "hot and cold stream are required")
	}
	if x.UValue <= 0 {
		return invalid("heat exchanger", x.ID, "u_value", "must be positive, got %g", x.UValue)
	}
	if x.Area < 0 {
		return invalid("heat exchanger", x.ID, "area", "must not be negative, got %g", x.Area)
	}
	return nil
}
