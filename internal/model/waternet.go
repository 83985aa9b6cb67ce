package model

import "strings"

// WaterSource classifies a network-level water stream.
type WaterSource string

const (
	WaterFresh    WaterSource = "fresh_water"
	WaterRecycled WaterSource = "recycled_water"
	WaterRain     WaterSource = "rain_water"
	WaterGround   WaterSource = "ground_water"
	WaterSurface  WaterSource = "surface_water"
	WaterProcess  WaterSource = "process_water"
	WaterUtility  WaterSource = "utility_water"
	Wastewater    WaterSource = "wastewater"
)

// WaterSources lists every source type in a stable order.
var WaterSources = []WaterSource{
	WaterFresh, WaterRecycled, WaterRain, WaterGround, WaterSurface,
	WaterProcess, WaterUtility, Wastewater,
}

// Tracked water quality parameters, in mg/L.
const (
	QualityTDS       = "TDS"
	QualityTSS       = "TSS"
	QualityCOD       = "COD"
	QualityBOD       = "BOD"
	QualityChloride  = "chloride"
	QualitySulfate   = "sulfate"
	QualityHardness  = "hardness"
	QualityTurbidity = "turbidity"
)

// QualityParameters lists the contaminants reported in a water footprint.
var QualityParameters = []string{
	QualityTDS, QualityTSS, QualityCOD, QualityBOD,
	QualityChloride, QualitySulfate, QualityHardness, QualityTurbidity,
}

// WaterStream is a network-level water flow.
type WaterStream struct {
	ID          string             `json:"stream_id" yaml:"stream_id"`
	Name        string             `json:"name" yaml:"name"`
	Source      WaterSource        `json:"source_type" yaml:"source_type"`
	FlowRate    float64            `json:"flow_rate" yaml:"flow_rate"` // m³/h
	Temperature float64            `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Pressure    float64            `json:"pressure,omitempty" yaml:"pressure,omitempty"`
	Quality     map[string]float64 `json:"quality,omitempty" yaml:"quality,omitempty"` // mg/L
}

// ContaminantLoad returns flow × concentration in kg/h.
func (w WaterStream) ContaminantLoad(contaminant string) float64 {
	return w.FlowRate * w.Quality[contaminant] / 1000
}

// Validate checks the fields a water stream must carry.
func (w WaterStream) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return invalid("water stream", w.ID, "stream_id", "required")
	}
	known := false
	for _, s := range WaterSources {
		if w.Source == s {
			known = true
			break
		}
	}
	if !known {
		return invalid("water stream", w.ID, "source_type", "unknown source %q", w.Source)
	}
	if w.FlowRate < 0 {
		return invalid("water stream", w.ID, "flow_rate", "must not be negative, got %g", w.FlowRate)
	}
	return nil
}

// TreatmentUnit removes contaminants from its inlet streams.
type TreatmentUnit struct {
	ID                  string             `json:"unit_id" yaml:"unit_id"`
	Name                string             `json:"name" yaml:"name"`
	Type                string             `json:"type" yaml:"type"`
	InletStreams        []string           `json:"inlet_streams" yaml:"inlet_streams"`
	OutletStreams       []string           `json:"outlet_streams" yaml:"outlet_streams"`
	RemovalEfficiencies map[string]float64 `json:"removal_efficiencies" yaml:"removal_efficiencies"` // percent
	OperatingCost       float64            `json:"operating_cost,omitempty" yaml:"operating_cost,omitempty"`
}

// TreatedQuality applies the removal efficiencies to an inlet quality.
func (t TreatmentUnit) TreatedQuality(inlet map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(inlet))
	for param, c := range inlet {
		out[param] = c * (1 - t.RemovalEfficiencies[param]/100)
	}
	return out
}

// Validate checks the fields a treatment unit must carry.
func (t TreatmentUnit) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return invalid("treatment unit", t.ID, "unit_id", "required")
	}
	for p, eff := range t.RemovalEfficiencies {
		if eff < 0 || eff > 100 {
			return invalid("treatment unit", t.ID, "removal_efficiencies", "%s efficiency %g outside [0,100]", p, eff)
		}
	}
	return nil
}
