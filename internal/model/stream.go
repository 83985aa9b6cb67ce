package model

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// Phase is the physical state of a stream.
type Phase string

const (
	PhaseLiquid Phase = "liquid"
	PhaseGas    Phase = "gas"
	PhaseSolid  Phase = "solid"
	PhaseMixed  Phase = "mixed"
)

// WaterComponent is the composition key that marks water content.
const WaterComponent = "water"

// waterMarkers are name fragments identifying an all-water stream.
var waterMarkers = []string{"water", "水"}

// Stream is a directed material flow between process units. An empty
// SourceUnit marks a feed, an empty DestinationUnit a product or vent.
type Stream struct {
	ID              string            `json:"stream_id" yaml:"stream_id"`
	Name            string            `json:"name" yaml:"name"`
	Phase           Phase             `json:"phase,omitempty" yaml:"phase,omitempty"`
	Temperature     *float64          `json:"temperature,omitempty" yaml:"temperature,omitempty"` // °C, nil when unknown
	Pressure        float64           `json:"pressure,omitempty" yaml:"pressure,omitempty"`       // kPa
	FlowRate        float64           `json:"flow_rate" yaml:"flow_rate"`                         // kg/h
	Composition     Composition       `json:"composition,omitempty" yaml:"composition,omitempty"`
	SourceUnit      string            `json:"source_unit,omitempty" yaml:"source_unit,omitempty"`
	DestinationUnit string            `json:"destination_unit,omitempty" yaml:"destination_unit,omitempty"`
	Properties      map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// StreamRole classifies a boundary stream for material efficiency.
type StreamRole string

const (
	RoleFeed      StreamRole = "feed"
	RoleProduct   StreamRole = "product"
	RoleByproduct StreamRole = "byproduct"
	RoleWaste     StreamRole = "waste"
	RoleInternal  StreamRole = "internal"
)

// PropStreamType is the stream property that overrides the inferred role.
const PropStreamType = "stream_type"

// Role returns the stream_type property when it names a role, otherwise
// feed for streams without a source, product for streams without a
// destination and internal for everything else.
func (s Stream) Role() StreamRole {
	switch r := StreamRole(s.Properties[PropStreamType]); r {
	case RoleFeed, RoleProduct, RoleByproduct, RoleWaste, RoleInternal:
		return r
	}
	switch {
	case s.IsFeed():
		return RoleFeed
	case s.IsProduct():
		return RoleProduct
	}
	return RoleInternal
}

// IsFeed reports whether the stream enters the flowsheet from outside.
func (s Stream) IsFeed() bool { return s.SourceUnit == "" }

// IsProduct reports whether the stream leaves the flowsheet.
func (s Stream) IsProduct() bool { return s.DestinationUnit == "" }

// Endpoints returns the non-empty unit ids the stream touches, source first.
// A recycle stream whose source and destination coincide yields one id.
func (s Stream) Endpoints() []string {
	var units []string
	if s.SourceUnit != "" {
		units = append(units, s.SourceUnit)
	}
	if s.DestinationUnit != "" && s.DestinationUnit != s.SourceUnit {
		units = append(units, s.DestinationUnit)
	}
	return units
}

// ComponentFlow returns the mass flow of one material in kg/h.
func (s Stream) ComponentFlow(materialID string) float64 {
	return s.FlowRate * s.Composition[materialID]
}

// IsWaterBearing reports whether the composition lists water or the name
// carries a water marker.
func (s Stream) IsWaterBearing() bool {
	if s.Composition.Contains(WaterComponent) {
		return true
	}
	name := cases.Fold().String(s.Name)
	for _, m := range waterMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// WaterContent returns the water mass fraction: the "water" entry when
// present, 1 for a water-named stream, otherwise 0.
func (s Stream) WaterContent() float64 {
	if f, ok := s.Composition[WaterComponent]; ok {
		return f
	}
	if s.IsWaterBearing() {
		return 1
	}
	return 0
}

// HasThermalState reports whether the stream carries enough data for a
// sensible heat calculation.
func (s Stream) HasThermalState() bool {
	return s.Temperature != nil && s.FlowRate > 0 && len(s.Composition) > 0
}

// Validate checks identity, flow and composition before persistence.
func (s Stream) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return invalid("stream", s.ID, "stream_id", "required")
	}
	if s.FlowRate < 0 || math.IsNaN(s.FlowRate) {
		return invalid("stream", s.ID, "flow_rate", "must not be negative, got %g", s.FlowRate)
	}
	switch s.Phase {
	case "", PhaseLiquid, PhaseGas, PhaseSolid, PhaseMixed:
	default:
		return invalid("stream", s.ID, "phase", "unknown phase %q", s.Phase)
	}
	if err := s.Composition.Validate(CompositionTolerance); err != nil {
		return invalid("stream", s.ID, "composition", "%v", err)
	}
	return nil
}

// Float returns a pointer to v, for optional fields such as Temperature.
func Float(v float64) *float64 { return &v }
