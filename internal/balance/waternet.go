package balance

import (
	"math"
	"sort"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// WaterAccount is the network-level water balance, flows in m³/h.
type WaterAccount struct {
	TotalFreshWater          float64 `json:"total_fresh_water"`
	TotalRecycledWater       float64 `json:"total_recycled_water"`
	TotalWastewater          float64 `json:"total_wastewater"`
	TotalConsumption         float64 `json:"total_consumption"`
	ReuseRatio               float64 `json:"water_reuse_ratio"`
	SpecificWaterConsumption float64 `json:"specific_water_consumption"`
	BalanceError             float64 `json:"water_balance_error"`
}

// OverallWaterBalance sums the network's water streams. Process and
// utility water count as consumption; every other flow is treated as
// leaving the network as wastewater.
func OverallWaterBalance(streams []model.WaterStream) WaterAccount {
	var a WaterAccount
	var total float64
	for _, s := range streams {
		total += s.FlowRate
		switch s.Source {
		case model.WaterFresh:
			a.TotalFreshWater += s.FlowRate
		case model.WaterRecycled:
			a.TotalRecycledWater += s.FlowRate
		case model.WaterProcess, model.WaterUtility:
			a.TotalConsumption += s.FlowRate
		}
	}
	a.TotalWastewater = total - a.TotalConsumption
	if a.TotalFreshWater > 0 {
		a.ReuseRatio = a.TotalRecycledWater / a.TotalFreshWater * 100
	}
	if a.TotalConsumption > 0 {
		a.SpecificWaterConsumption = a.TotalFreshWater / a.TotalConsumption
	}
	a.BalanceError = math.Abs(a.TotalFreshWater + a.TotalRecycledWater - a.TotalWastewater - a.TotalConsumption)
	return a
}

// ContaminantTolerance is the absolute load error, in kg/h, still counted
// as balanced.
const ContaminantTolerance = 0.01

// ContaminantAccount is the load balance of one contaminant, in kg/h.
type ContaminantAccount struct {
	Contaminant      string  `json:"contaminant"`
	TotalInputLoad   float64 `json:"total_input_load"`
	TotalOutputLoad  float64 `json:"total_output_load"`
	TotalRemovedLoad float64 `json:"total_removed_load"`
	OverallRemoval   float64 `json:"overall_removal_efficiency"`
	BalanceError     float64 `json:"balance_error"`
	IsBalanced       bool    `json:"is_balanced"`
}

// ContaminantBalance traces one contaminant: load brought in by fresh and
// recycled water, load removed by treatment units, load leaving with
// wastewater.
func ContaminantBalance(streams []model.WaterStream, units []model.TreatmentUnit, contaminant string) ContaminantAccount {
	byID := make(map[string]model.WaterStream, len(streams))
	a := ContaminantAccount{Contaminant: contaminant}
	for _, s := range streams {
		byID[s.ID] = s
		switch s.Source {
		case model.WaterFresh, model.WaterRecycled:
			a.TotalInputLoad += s.ContaminantLoad(contaminant)
		case model.Wastewater:
			a.TotalOutputLoad += s.ContaminantLoad(contaminant)
		}
	}
	for _, u := range units {
		var inlet float64
		for _, id := range u.InletStreams {
			if s, ok := byID[id]; ok {
				inlet += s.ContaminantLoad(contaminant)
			}
		}
		a.TotalRemovedLoad += inlet * u.RemovalEfficiencies[contaminant] / 100
	}
	a.BalanceError = a.TotalInputLoad - a.TotalOutputLoad - a.TotalRemovedLoad
	a.IsBalanced = math.Abs(a.BalanceError) < ContaminantTolerance
	if a.TotalInputLoad > 0 {
		a.OverallRemoval = a.TotalRemovedLoad / a.TotalInputLoad * 100
	}
	return a
}

// QualityCheck compares one contaminant against its reuse limit.
type QualityCheck struct {
	Wastewater       float64 `json:"wastewater"`
	Required         float64 `json:"required"`
	MeetsRequirement bool    `json:"meets_requirement"`
}

// ReuseOpportunity pairs a wastewater stream with a fresh water stream it
// could replace.
type ReuseOpportunity struct {
	WastewaterSource      string                  `json:"wastewater_source"`
	WastewaterFlow        float64                 `json:"wastewater_flow"`
	FreshWaterReplacement string                  `json:"fresh_water_replacement"`
	FreshWaterFlow        float64                 `json:"fresh_water_flow"`
	PotentialSavings      float64                 `json:"potential_savings"`
	QualityAnalysis       map[string]QualityCheck `json:"water_quality_analysis"`
}

// ReuseOpportunities lists every wastewater/fresh water pair where the
// wastewater meets each limit. A contaminant the stream does not report
// counts as 0 mg/L. Savings are the smaller of the two flows.
func ReuseOpportunities(streams []model.WaterStream, limits map[string]float64) []ReuseOpportunity {
	params := make([]string, 0, len(limits))
	for p := range limits {
		params = append(params, p)
	}
	sort.Strings(params)

	var waste, fresh []model.WaterStream
	for _, s := range streams {
		switch s.Source {
		case model.Wastewater:
			waste = append(waste, s)
		case model.WaterFresh:
			fresh = append(fresh, s)
		}
	}

	opportunities := []ReuseOpportunity{}
	for _, w := range waste {
		suitable := true
		for _, p := range params {
			if w.Quality[p] > limits[p] {
				suitable = false
				break
			}
		}
		if !suitable {
			continue
		}
		for _, f := range fresh {
			checks := make(map[string]QualityCheck, len(params))
			for _, p := range params {
				checks[p] = QualityCheck{
					Wastewater:       w.Quality[p],
					Required:         limits[p],
					MeetsRequirement: w.Quality[p] <= limits[p],
				}
			}
			opportunities = append(opportunities, ReuseOpportunity{
				WastewaterSource:      w.ID,
				WastewaterFlow:        w.FlowRate,
				FreshWaterReplacement: f.ID,
				FreshWaterFlow:        f.FlowRate,
				PotentialSavings:      math.Min(w.FlowRate, f.FlowRate),
				QualityAnalysis:       checks,
			})
		}
	}
	return opportunities
}

// ReuseSummary totals a set of reuse opportunities.
type ReuseSummary struct {
	TotalReusePotential       float64 `json:"total_reuse_potential"`
	FreshWaterSavings         float64 `json:"fresh_water_savings"`
	WastewaterReduction       float64 `json:"wastewater_reduction"`
	PotentialReductionPercent float64 `json:"potential_reduction_percent"`
	NumberOfOpportunities     int     `json:"number_of_opportunities"`
	EstimatedCostSavings      float64 `json:"estimated_cost_savings"`
}

// ReusePotential totals the opportunities against the network's fresh
// water intake. It returns false when there is nothing to total.
func ReusePotential(streams []model.WaterStream, opportunities []ReuseOpportunity, waterCost float64) (ReuseSummary, bool) {
	if len(opportunities) == 0 {
		return ReuseSummary{}, false
	}
	var savings float64
	for _, o := range opportunities {
		savings += o.PotentialSavings
	}
	s := ReuseSummary{
		TotalReusePotential:   savings,
		FreshWaterSavings:     savings,
		WastewaterReduction:   savings,
		NumberOfOpportunities: len(opportunities),
		EstimatedCostSavings:  savings * HoursPerYear * waterCost,
	}
	if fresh := OverallWaterBalance(streams).TotalFreshWater; fresh > 0 {
		s.PotentialReductionPercent = savings / fresh * 100
	}
	return s, true
}

// WaterCase is one water scenario, flows in m³/h and costs per year.
type WaterCase struct {
	FreshWaterConsumption float64 `json:"fresh_water_consumption"`
	WastewaterGeneration  float64 `json:"wastewater_generation"`
	AnnualFreshWaterCost  float64 `json:"annual_fresh_water_cost"`
	AnnualWastewaterCost  float64 `json:"annual_wastewater_cost"`
	TotalAnnualCost       float64 `json:"total_annual_cost"`
}

func waterCase(fresh, waste float64, p WaterParams) WaterCase {
	c := WaterCase{
		FreshWaterConsumption: fresh,
		WastewaterGeneration:  waste,
		AnnualFreshWaterCost:  fresh * p.WaterCost * HoursPerYear,
		AnnualWastewaterCost:  waste * p.TreatmentCost * HoursPerYear,
	}
	c.TotalAnnualCost = c.AnnualFreshWaterCost + c.AnnualWastewaterCost
	return c
}

// WaterOptimization compares the network before and after taking every
// reuse opportunity.
type WaterOptimization struct {
	Current            WaterCase          `json:"current_situation"`
	Optimized          WaterCase          `json:"optimized_situation"`
	Reuse              ReuseSummary       `json:"reuse_potential"`
	Opportunities      []ReuseOpportunity `json:"opportunities"`
	AnnualCostSavings  float64            `json:"annual_cost_savings"`
	InvestmentRequired float64            `json:"investment_required"`
	PaybackPeriodYears Years              `json:"payback_period_years"`
}

// OptimizeWaterNetwork applies the reuse limits of p and prices the result.
func OptimizeWaterNetwork(streams []model.WaterStream, p WaterParams) WaterOptimization {
	limits := p.ReuseLimits
	if len(limits) == 0 {
		limits = DefaultReuseLimits()
	}
	current := OverallWaterBalance(streams)
	opportunities := ReuseOpportunities(streams, limits)
	summary, _ := ReusePotential(streams, opportunities, p.WaterCost)

	optimizedFresh := math.Max(0, current.TotalFreshWater-summary.FreshWaterSavings)
	optimizedWaste := math.Max(0, current.TotalWastewater-summary.WastewaterReduction)

	o := WaterOptimization{
		Current:            waterCase(current.TotalFreshWater, current.TotalWastewater, p),
		Optimized:          waterCase(optimizedFresh, optimizedWaste, p),
		Reuse:              summary,
		Opportunities:      opportunities,
		InvestmentRequired: float64(len(opportunities)) * p.InvestmentPerOpportunity,
	}
	o.AnnualCostSavings = o.Current.TotalAnnualCost - o.Optimized.TotalAnnualCost
	o.PaybackPeriodYears = payback(o.InvestmentRequired, o.AnnualCostSavings)
	return o
}

// Efficiency ratings by reuse ratio.
const (
	RatingExcellent        = "excellent"
	RatingGood             = "good"
	RatingFair             = "fair"
	RatingNeedsImprovement = "needs_improvement"
	RatingPoor             = "poor"
)

// EfficiencyRating grades a reuse ratio given in percent.
func EfficiencyRating(reuseRatio float64) string {
	switch {
	case reuseRatio >= 80:
		return RatingExcellent
	case reuseRatio >= 60:
		return RatingGood
	case reuseRatio >= 40:
		return RatingFair
	case reuseRatio >= 20:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

// BaselineProduction is the production basis of water intensity, in t.
const BaselineProduction = 1000

// Footprint is the network's water footprint.
type Footprint struct {
	TotalWaterFootprint      float64            `json:"total_water_footprint"`
	WaterIntensity           float64            `json:"water_intensity"` // m³/t product
	WaterTypeBreakdown       map[string]float64 `json:"water_type_breakdown"`
	ContaminantEmissions     map[string]float64 `json:"contaminant_emissions"`
	ReuseRatio               float64            `json:"water_reuse_ratio"`
	SpecificWaterConsumption float64            `json:"specific_water_consumption"`
	EfficiencyRating         string             `json:"water_efficiency_rating"`
}

// WaterFootprint reports intake, flow per source type and the contaminant
// loads leaving with wastewater.
func WaterFootprint(streams []model.WaterStream, units []model.TreatmentUnit) Footprint {
	a := OverallWaterBalance(streams)
	f := Footprint{
		TotalWaterFootprint:      a.TotalFreshWater + a.TotalRecycledWater,
		WaterTypeBreakdown:       make(map[string]float64),
		ContaminantEmissions:     make(map[string]float64),
		ReuseRatio:               a.ReuseRatio,
		SpecificWaterConsumption: a.SpecificWaterConsumption,
		EfficiencyRating:         EfficiencyRating(a.ReuseRatio),
	}
	f.WaterIntensity = f.TotalWaterFootprint / BaselineProduction
	for _, s := range streams {
		f.WaterTypeBreakdown[string(s.Source)] += s.FlowRate
	}
	for _, c := range model.QualityParameters {
		if load := ContaminantBalance(streams, units, c).TotalOutputLoad; load > 0 {
			f.ContaminantEmissions[c] = load
		}
	}
	return f
}
