package model

import "strings"

// Material is a chemical species with the physical properties the balance
// calculators need. Zero means "not known" for every property.
type Material struct {
	ID                  string             `json:"material_id" yaml:"material_id"`
	Name                string             `json:"name" yaml:"name"`
	Formula             string             `json:"formula,omitempty" yaml:"formula,omitempty"`
	CASNumber           string             `json:"cas_number,omitempty" yaml:"cas_number,omitempty"`
	MolarMass           float64            `json:"molar_mass,omitempty" yaml:"molar_mass,omitempty"`                     // g/mol
	Density             float64            `json:"density,omitempty" yaml:"density,omitempty"`                           // kg/m³
	Viscosity           float64            `json:"viscosity,omitempty" yaml:"viscosity,omitempty"`                       // mPa·s
	SpecificHeat        float64            `json:"specific_heat,omitempty" yaml:"specific_heat,omitempty"`               // kJ/(kg·K)
	ThermalConductivity float64            `json:"thermal_conductivity,omitempty" yaml:"thermal_conductivity,omitempty"` // W/(m·K)
	BoilingPoint        float64            `json:"boiling_point,omitempty" yaml:"boiling_point,omitempty"`
	MeltingPoint        float64            `json:"melting_point,omitempty" yaml:"melting_point,omitempty"`
	SafetyClass         string             `json:"safety_class,omitempty" yaml:"safety_class,omitempty"`
	HazardClass         string             `json:"hazard_class,omitempty" yaml:"hazard_class,omitempty"`
	StorageConditions   string             `json:"storage_conditions,omitempty" yaml:"storage_conditions,omitempty"`
	Quality             map[string]float64 `json:"quality,omitempty" yaml:"quality,omitempty"`
	Properties          map[string]string  `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// HasSpecificHeat reports whether a usable specific heat is recorded.
func (m Material) HasSpecificHeat() bool {
	return m.SpecificHeat > 0
}

// Enthalpy returns the specific sensible enthalpy in kJ/kg relative to ref.
func (m Material) Enthalpy(temperature, ref float64) float64 {
	return m.SpecificHeat * (temperature - ref)
}

// MolarHeatCapacity returns cp in kJ/(mol·K), or 0 when molar mass is unknown.
func (m Material) MolarHeatCapacity() float64 {
	if m.MolarMass <= 0 {
		return 0
	}
	return m.SpecificHeat * m.MolarMass / 1000
}

// Validate checks the fields a material must carry before it is stored.
func (m Material) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return invalid("material", m.ID, "material_id", "required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return invalid("material", m.ID, "name", "required")
	}
	props := []struct {
		field string
		value float64
	}{
		{"molar_mass", m.MolarMass},
		{"density", m.Density},
		{"viscosity", m.Viscosity},
		{"specific_heat", m.SpecificHeat},
		{"thermal_conductivity", m.ThermalConductivity},
	}
	for _, p := range props {
		if p.value < 0 {
			return invalid("material", m.ID, p.field, "must not be negative, got %g", p.value)
		}
	}
	return nil
}
