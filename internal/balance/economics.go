package balance

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// GJPerKJ converts kJ to GJ.
const GJPerKJ = 1e-6

// Years is a payback period. +Inf means the investment never pays back.
type Years float64

// Never is the payback of an investment without savings.
var Never = Years(math.Inf(1))

// payback returns investment/savings, or Never when savings are not positive.
func payback(investment, savings float64) Years {
	if savings <= 0 {
		return Never
	}
	return Years(investment / savings)
}

// IsNever reports whether the period is infinite.
func (y Years) IsNever() bool { return math.IsInf(float64(y), 1) }

func (y Years) String() string {
	if y.IsNever() {
		return "never"
	}
	return strconv.FormatFloat(float64(y), 'f', 2, 64)
}

// MarshalJSON encodes an infinite period as the string "inf".
func (y Years) MarshalJSON() ([]byte, error) {
	if y.IsNever() {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(y))
}

// UtilityCase is one utility scenario, duties in kJ/h and costs per year.
type UtilityCase struct {
	HotUtility      float64 `json:"hot_utility"`
	ColdUtility     float64 `json:"cold_utility"`
	HotUtilityCost  float64 `json:"hot_utility_cost_annual"`
	ColdUtilityCost float64 `json:"cold_utility_cost_annual"`
	TotalCost       float64 `json:"total_utility_cost_annual"`
}

// RecoveryPotential compares the pinch recovery target with the duty the
// installed exchangers move.
type RecoveryPotential struct {
	MaxHeatRecovery        float64 `json:"max_heat_recovery"`
	CurrentHeatRecovery    float64 `json:"current_heat_recovery"`
	ImprovementOpportunity float64 `json:"improvement_opportunity"`
}

// Optimization is the economic evaluation of a heat exchanger network.
type Optimization struct {
	// Current assumes no recovery: every cold duty is met by hot utility
	// and every hot duty by cold utility.
	Current UtilityCase `json:"current_case"`

	// Optimal runs at the pinch minimum utilities.
	Optimal UtilityCase `json:"optimal_case"`

	HeatRecovery       float64           `json:"heat_recovery"`
	AnnualSavings      float64           `json:"annual_savings"`
	TotalArea          float64           `json:"total_heat_exchanger_area"`
	CapitalCost        float64           `json:"capital_cost"`
	PaybackYears       Years             `json:"payback_period_years"`
	NumberOfExchangers int               `json:"number_of_exchangers"`
	Potential          RecoveryPotential `json:"optimization_potential"`
}

func utilityCase(hot, cold float64, p EconomicParams) UtilityCase {
	c := UtilityCase{
		HotUtility:      hot,
		ColdUtility:     cold,
		HotUtilityCost:  hot * p.AnnualHours * GJPerKJ * p.HotUtilityCost,
		ColdUtilityCost: cold * p.AnnualHours * GJPerKJ * p.ColdUtilityCost,
	}
	c.TotalCost = c.HotUtilityCost + c.ColdUtilityCost
	return c
}

// OptimizeNetwork prices the network against its pinch targets. Capital
// is the installed exchanger area times the cost per m².
func OptimizeNetwork(streams []model.HeatStream, exchangers []model.HeatExchanger, deltaTMin float64, p EconomicParams) (Optimization, error) {
	ratings, err := RateAll(streams, exchangers)
	if err != nil {
		return Optimization{}, err
	}
	pinch := PinchAnalysis(streams, deltaTMin)

	o := Optimization{
		Current:            utilityCase(pinch.TotalColdHeat, pinch.TotalHotHeat, p),
		Optimal:            utilityCase(pinch.HotUtilityMin, pinch.ColdUtilityMin, p),
		HeatRecovery:       pinch.HeatRecovery,
		NumberOfExchangers: len(exchangers),
	}
	o.AnnualSavings = o.Current.TotalCost - o.Optimal.TotalCost
	for _, x := range exchangers {
		o.TotalArea += x.Area
	}
	o.CapitalCost = o.TotalArea * p.CapitalCostPerArea
	o.PaybackYears = payback(o.CapitalCost, o.AnnualSavings)

	var current float64
	for _, r := range ratings {
		current += math.Abs(r.HeatDuty)
	}
	o.Potential = RecoveryPotential{
		MaxHeatRecovery:        pinch.HeatRecovery,
		CurrentHeatRecovery:    current,
		ImprovementOpportunity: pinch.HeatRecovery - current,
	}
	return o, nil
}
