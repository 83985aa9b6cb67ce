package balance

import "github.com/virmuran/ProcessDesignPro/internal/model"

// Params holds the constants of the per-unit calculators.
type Params struct {
	// MassTolerance is the relative tolerance, in percent, given to mass
	// balance records that do not carry their own.
	MassTolerance float64

	// HeatLossFraction is the share of input heat booked as loss.
	HeatLossFraction float64

	// ReferenceTemperature is the enthalpy datum in °C.
	ReferenceTemperature float64

	// HeatAbsTolerance is the absolute kW difference below which a heat
	// balance counts as calculated. It is absolute while the mass tolerance
	// is relative.
	HeatAbsTolerance float64
}

// DefaultParams returns the calculator constants used when none are configured.
func DefaultParams() Params {
	return Params{
		MassTolerance:        model.DefaultMassTolerance,
		HeatLossFraction:     0.05,
		ReferenceTemperature: 25,
		HeatAbsTolerance:     0.01,
	}
}

// DefaultDeltaTMin is the default minimum approach temperature in °C.
const DefaultDeltaTMin = 10.0

// EconomicParams prices heat integration.
type EconomicParams struct {
	HotUtilityCost     float64 // per GJ
	ColdUtilityCost    float64 // per GJ
	CapitalCostPerArea float64 // per m²
	AnnualHours        float64
}

// DefaultEconomicParams returns the default utility and capital prices.
func DefaultEconomicParams() EconomicParams {
	return EconomicParams{
		HotUtilityCost:     100,
		ColdUtilityCost:    50,
		CapitalCostPerArea: 1000,
		AnnualHours:        8000,
	}
}

// WaterParams prices water reuse.
type WaterParams struct {
	WaterCost                float64 // per m³ fresh water
	TreatmentCost            float64 // per m³ wastewater
	InvestmentPerOpportunity float64
	ReuseLimits              map[string]float64 // contaminant → max mg/L
}

// HoursPerYear is the operating time assumed for water costs.
const HoursPerYear = 24 * 365

// DefaultReuseLimits returns the contaminant limits for reused water.
func DefaultReuseLimits() map[string]float64 {
	return map[string]float64{
		model.QualityTDS: 500,
		model.QualityCOD: 100,
		model.QualityBOD: 30,
		model.QualityTSS: 50,
	}
}

// DefaultWaterParams returns the default water prices and reuse limits.
func DefaultWaterParams() WaterParams {
	return WaterParams{
		WaterCost:                5,
		TreatmentCost:            10,
		InvestmentPerOpportunity: 100000,
		ReuseLimits:              DefaultReuseLimits(),
	}
}
