package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUnitType(t *testing.T) {
	assert.Equal(t, UnitReactor, ParseUnitType("Reactor"))
	assert.Equal(t, UnitHeatExchanger, ParseUnitType("heatex"))
	assert.Equal(t, UnitColumn, ParseUnitType(" column "))
	assert.Equal(t, UnitOther, ParseUnitType("crystallizer"))
}

func TestReactionHeatParameter(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float", 500.0, 500},
		{"int", 250, 250},
		{"string", "120.5", 120.5},
		{"garbage", "lots", 0},
		{"missing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := ProcessUnit{ID: "U1", Parameters: map[string]any{}}
			if tt.value != nil {
				u.Parameters[ParamReactionHeat] = tt.value
			}
			assert.InDelta(t, tt.want, u.ReactionHeat(), 1e-12)
		})
	}
}

func TestEquipmentFromUnit(t *testing.T) {
	u := ProcessUnit{ID: "R-101", Name: "Main Reactor", Type: UnitReactor, Description: "CSTR"}

	eq := EquipmentFromUnit(u)
	assert.Equal(t, "EQ-R-101", eq.ID)
	assert.Equal(t, "Main Reactor - reactor", eq.Name)
	assert.Equal(t, "reactor", eq.Type)
	assert.Equal(t, 1, eq.Quantity)
	assert.Equal(t, "R-101", eq.SourceUnit())
	assert.Equal(t, "reactor", eq.Specifications[SpecUnitType])
	assert.Equal(t, "CSTR", eq.Specifications[SpecDescription])
}

func TestEquipmentTypeMapping(t *testing.T) {
	assert.Equal(t, "heat_exchanger", EquipmentTypeFor(UnitHeatExchanger))
	assert.Equal(t, "storage_tank", EquipmentTypeFor(UnitTank))
	assert.Equal(t, DefaultEquipmentType, EquipmentTypeFor(UnitColumn))
}

func TestEquipmentDrawsWater(t *testing.T) {
	for _, typ := range []string{"pump", "cooling_tower", "Boiler"} {
		assert.True(t, Equipment{Type: typ}.DrawsWater(), typ)
	}
	assert.False(t, Equipment{Type: "reactor"}.DrawsWater())
}
