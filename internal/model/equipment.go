package model

import (
	"fmt"
	"strings"
)

// Equipment types that draw water and therefore affect water balances.
const (
	EquipmentPump         = "pump"
	EquipmentCoolingTower = "cooling_tower"
	EquipmentBoiler       = "boiler"
)

// Specification keys written on equipment derived from a unit.
const (
	SpecSourceUnit  = "source_unit"
	SpecUnitType    = "unit_type"
	SpecDescription = "description"
)

// EquipmentIDPrefix prefixes equipment derived from a process unit.
const EquipmentIDPrefix = "EQ-"

// Equipment is a physical item on the equipment list.
type Equipment struct {
	ID                     string            `json:"equipment_id" yaml:"equipment_id"`
	Name                   string            `json:"name" yaml:"name"`
	Type                   string            `json:"type" yaml:"type"`
	Model                  string            `json:"model,omitempty" yaml:"model,omitempty"`
	Manufacturer           string            `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	MaterialOfConstruction string            `json:"material_of_construction,omitempty" yaml:"material_of_construction,omitempty"`
	Quantity               int               `json:"quantity" yaml:"quantity"`
	Specifications         map[string]string `json:"specifications,omitempty" yaml:"specifications,omitempty"`
	OperatingConditions    map[string]string `json:"operating_conditions,omitempty" yaml:"operating_conditions,omitempty"`
	UtilityRequirements    map[string]string `json:"utility_requirements,omitempty" yaml:"utility_requirements,omitempty"`
}

// EquipmentIDForUnit returns the id of the equipment derived from unitID.
func EquipmentIDForUnit(unitID string) string {
	return EquipmentIDPrefix + unitID
}

// SourceUnit returns the unit this equipment belongs to, if recorded.
func (e Equipment) SourceUnit() string {
	return e.Specifications[SpecSourceUnit]
}

// DrawsWater reports whether the equipment type consumes process water.
func (e Equipment) DrawsWater() bool {
	switch strings.ToLower(e.Type) {
	case EquipmentPump, EquipmentCoolingTower, EquipmentBoiler:
		return true
	}
	return false
}

// equipmentTypes maps unit types to the equipment type created for them.
var equipmentTypes = map[UnitType]string{
	UnitReactor:       "reactor",
	UnitSeparator:     "separator",
	UnitHeatExchanger: "heat_exchanger",
	UnitPump:          EquipmentPump,
	UnitCompressor:    "compressor",
	UnitTank:          "storage_tank",
}

// DefaultEquipmentType is used for unit types without a dedicated mapping.
const DefaultEquipmentType = "equipment"

// EquipmentTypeFor returns the equipment type derived from a unit type.
func EquipmentTypeFor(t UnitType) string {
	if et, ok := equipmentTypes[t]; ok {
		return et
	}
	return DefaultEquipmentType
}

// EquipmentFromUnit builds the equipment record that mirrors a unit.
func EquipmentFromUnit(u ProcessUnit) Equipment {
	et := EquipmentTypeFor(u.Type)
	return Equipment{
		ID:       EquipmentIDForUnit(u.ID),
		Name:     EquipmentName(u.Name, et),
		Type:     et,
		Quantity: 1,
		Specifications: map[string]string{
			SpecSourceUnit:  u.ID,
			SpecUnitType:    string(u.Type),
			SpecDescription: u.Description,
		},
	}
}

// EquipmentName formats the display name of unit-derived equipment.
func EquipmentName(unitName, equipmentType string) string {
	return fmt.Sprintf("%s - %s", unitName, equipmentType)
}

// Validate checks the fields equipment must carry.
func (e Equipment) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return invalid("equipment", e.ID, "equipment_id", "required")
	}
	if strings.TrimSpace(e.Type) == "" {
		return invalid("equipment", e.ID, "type", "required")
	}
	if e.Quantity < 0 {
		return invalid("equipment", e.ID, "quantity", "must not be negative, got %d", e.Quantity)
	}
	return nil
}
