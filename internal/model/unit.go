package model

import (
	"strconv"
	"strings"
)

// UnitType classifies a process unit.
type UnitType string

const (
	UnitReactor       UnitType = "reactor"
	UnitSeparator     UnitType = "separator"
	UnitHeatExchanger UnitType = "heat_exchanger"
	UnitPump          UnitType = "pump"
	UnitCompressor    UnitType = "compressor"
	UnitTank          UnitType = "tank"
	UnitColumn        UnitType = "column"
	UnitMixer         UnitType = "mixer"
	UnitSplitter      UnitType = "splitter"
	UnitValve         UnitType = "valve"
	UnitOther         UnitType = "other"
)

var unitAliases = map[string]UnitType{
	"heatex":    UnitHeatExchanger,
	"exchanger": UnitHeatExchanger,
}

// ParseUnitType normalizes a free-form type string. Unknown types map to
// UnitOther.
func ParseUnitType(s string) UnitType {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := unitAliases[s]; ok {
		return t
	}
	switch t := UnitType(s); t {
	case UnitReactor, UnitSeparator, UnitHeatExchanger, UnitPump, UnitCompressor,
		UnitTank, UnitColumn, UnitMixer, UnitSplitter, UnitValve, UnitOther:
		return t
	}
	return UnitOther
}

// Position is the 2-D layout location of a unit on the flowsheet canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// ParamReactionHeat is the parameter key carrying reaction heat in kW.
const ParamReactionHeat = "reaction_heat"

// ProcessUnit is a node in the flowsheet graph. Its streams are not embedded;
// they are found by querying streams whose endpoints reference the unit.
type ProcessUnit struct {
	ID          string         `json:"unit_id" yaml:"unit_id"`
	Name        string         `json:"name" yaml:"name"`
	Type        UnitType       `json:"type" yaml:"type"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Position    Position       `json:"position" yaml:"position"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ReactionHeat returns the numeric reaction_heat parameter in kW, or 0.
func (u ProcessUnit) ReactionHeat() float64 {
	return u.Param(ParamReactionHeat)
}

// Param reads a numeric parameter, accepting numbers and numeric strings.
func (u ProcessUnit) Param(key string) float64 {
	switch v := u.Parameters[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// Validate checks the fields a unit must carry.
func (u ProcessUnit) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return invalid("unit", u.ID, "unit_id", "required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return invalid("unit", u.ID, "name", "required")
	}
	return nil
}
