// Package report renders stored balances and network analyses as plain
// text for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// printer remembers the first write error so renderers can print freely.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	p.printf("\n=== %s ===\n", title)
}

// UnitReport collects the stored balances of one unit. A nil balance has
// not been calculated.
type UnitReport struct {
	Unit  model.ProcessUnit
	Mass  *model.MaterialBalance
	Heat  *model.HeatBalance
	Water *model.WaterBalance
}

// WriteUnit renders the material, heat and water balance of one unit.
func WriteUnit(w io.Writer, r UnitReport) error {
	p := &printer{w: w}
	p.printf("Unit: %s (%s, %s)\n", r.Unit.ID, r.Unit.Name, r.Unit.Type)

	p.section("Material Balance")
	if mb := r.Mass; mb == nil {
		p.printf("  (not calculated)\n")
	} else {
		p.printf("  Status:     %s\n", mb.Status)
		p.printf("  Inputs:     %s\n", list(mb.InputStreams))
		p.printf("  Outputs:    %s\n", list(mb.OutputStreams))
		p.printf("  Tolerance:  %.2f%%\n", mb.Tolerance)
		if res := mb.Result; res != nil {
			p.printf("  Total In:   %.2f kg/h\n", res.TotalInput)
			p.printf("  Total Out:  %.2f kg/h\n", res.TotalOutput)
			p.printf("  Difference: %.2f kg/h (%.2f%%)\n", res.TotalDifference, res.DifferencePercent)
			p.printf("  Components:\n")
			for _, id := range sortedKeys(res.Components) {
				cb := res.Components[id]
				p.printf("    %s: in %.2f, out %.2f, diff %.2f, yield %.2f%%\n",
					id, cb.Input, cb.Output, cb.Difference, cb.Yield)
			}
		}
	}

	p.section("Heat Balance")
	if hb := r.Heat; hb == nil {
		p.printf("  (not calculated)\n")
	} else {
		p.printf("  Status:     %s\n", hb.Status)
		p.printf("  Input:\n")
		writeFlows(p, hb.InputHeat, "kW")
		p.printf("  Output:\n")
		writeFlows(p, hb.OutputHeat, "kW")
		p.printf("  Heat Loss:  %.2f kW\n", hb.HeatLoss)
		if hb.Efficiency != nil {
			p.printf("  Efficiency: %.2f%%\n", *hb.Efficiency)
		} else {
			p.printf("  Efficiency: n/a\n")
		}
		if len(hb.UtilityRequirements) > 0 {
			p.printf("  Utilities:\n")
			writeFlows(p, hb.UtilityRequirements, "kW")
		}
	}

	p.section("Water Balance")
	if wb := r.Water; wb == nil {
		p.printf("  (not calculated)\n")
	} else {
		p.printf("  Fresh In:    %.2f kg/h\n", wb.FreshWaterIn)
		p.printf("  Recycled In: %.2f kg/h\n", wb.RecycledWaterIn)
		p.printf("  Consumption: %.2f kg/h\n", wb.WaterConsumption)
		p.printf("  Wastewater:  %.2f kg/h\n", wb.WastewaterOut)
		if wb.ReuseNote != "" {
			p.printf("  Reuse:       %s\n", wb.ReuseNote)
		}
	}
	return p.err
}

// PinchReport collects a pinch analysis, its candidate matches and,
// optionally, the network economics.
type PinchReport struct {
	Pinch     balance.PinchResult
	Network   balance.Network
	Economics *balance.Optimization
}

// WritePinch renders pinch targets, composite curves and candidate matches.
// Heat flows are in kJ/h.
func WritePinch(w io.Writer, r PinchReport) error {
	p := &printer{w: w}
	res := r.Pinch
	p.printf("Pinch Analysis (dTmin %.2f °C)\n", res.DeltaTMin)

	p.section("Targets")
	if res.Pinch != nil {
		p.printf("  Pinch:            %.2f °C (hot %.2f, cold %.2f)\n",
			res.PinchTemperature, res.Pinch.HotTemperature, res.Pinch.ColdTemperature)
	} else {
		p.printf("  Pinch:            none\n")
	}
	p.printf("  Hot Utility Min:  %.2f\n", res.HotUtilityMin)
	p.printf("  Cold Utility Min: %.2f\n", res.ColdUtilityMin)
	p.printf("  Heat Recovery:    %.2f\n", res.HeatRecovery)
	p.printf("  Total Hot:        %.2f\n", res.TotalHotHeat)
	p.printf("  Total Cold:       %.2f\n", res.TotalColdHeat)

	p.section("Composite Curves")
	writeCurve(p, "Hot", res.HotCompositeCurve)
	writeCurve(p, "Cold", res.ColdCompositeCurve)

	p.section("Matches")
	if len(r.Network.PossibleMatches) == 0 {
		p.printf("  (none)\n")
	}
	for _, m := range r.Network.PossibleMatches {
		p.printf("  %s -> %s: %.2f (approach %.2f °C)\n",
			m.HotStream, m.ColdStream, m.MaxHeatExchange, m.TemperatureApproach)
	}

	if o := r.Economics; o != nil {
		p.section("Economics")
		p.printf("  Current Cost:   %.2f /yr\n", o.Current.TotalCost)
		p.printf("  Optimal Cost:   %.2f /yr\n", o.Optimal.TotalCost)
		p.printf("  Annual Savings: %.2f /yr\n", o.AnnualSavings)
		p.printf("  Exchangers:     %d (%.2f m²)\n", o.NumberOfExchangers, o.TotalArea)
		p.printf("  Capital Cost:   %.2f\n", o.CapitalCost)
		p.printf("  Payback:        %s\n", years(o.PaybackYears))
	}
	return p.err
}

func writeCurve(p *printer, label string, curve []balance.CurvePoint) {
	p.printf("  %s:\n", label)
	if len(curve) == 0 {
		p.printf("    (empty)\n")
	}
	for _, pt := range curve {
		p.printf("    %.2f °C: cp %.2f, dQ %.2f, Q %.2f\n", pt.Temperature, pt.CP, pt.DeltaQ, pt.CumulativeHeat)
	}
}

// WaterReport collects the network-level water analyses.
type WaterReport struct {
	Account      balance.WaterAccount
	Contaminants []balance.ContaminantAccount
	Optimization balance.WaterOptimization
	Footprint    balance.Footprint
}

// WriteWater renders the water network balance, contaminant loads, reuse
// opportunities and footprint. Flows are in m³/h.
func WriteWater(w io.Writer, r WaterReport) error {
	p := &printer{w: w}
	a := r.Account
	p.printf("Water Network\n")

	p.section("Balance")
	p.printf("  Fresh Water:    %.2f m³/h\n", a.TotalFreshWater)
	p.printf("  Recycled Water: %.2f m³/h\n", a.TotalRecycledWater)
	p.printf("  Consumption:    %.2f m³/h\n", a.TotalConsumption)
	p.printf("  Wastewater:     %.2f m³/h\n", a.TotalWastewater)
	p.printf("  Reuse Ratio:    %.2f%%\n", a.ReuseRatio)
	p.printf("  Balance Error:  %.2f m³/h\n", a.BalanceError)

	p.section("Contaminants")
	if len(r.Contaminants) == 0 {
		p.printf("  (none)\n")
	}
	for _, c := range r.Contaminants {
		p.printf("  %s: in %.3f, removed %.3f, out %.3f kg/h, error %.3f (%s)\n",
			c.Contaminant, c.TotalInputLoad, c.TotalRemovedLoad, c.TotalOutputLoad,
			c.BalanceError, balanced(c.IsBalanced))
	}

	o := r.Optimization
	p.section("Reuse")
	if len(o.Opportunities) == 0 {
		p.printf("  (no opportunities)\n")
	}
	for _, op := range o.Opportunities {
		p.printf("  %s -> %s: %.2f m³/h\n", op.WastewaterSource, op.FreshWaterReplacement, op.PotentialSavings)
	}
	p.printf("  Current Cost:   %.2f /yr\n", o.Current.TotalAnnualCost)
	p.printf("  Optimized Cost: %.2f /yr\n", o.Optimized.TotalAnnualCost)
	p.printf("  Investment:     %.2f\n", o.InvestmentRequired)
	p.printf("  Payback:        %s\n", years(o.PaybackPeriodYears))

	f := r.Footprint
	p.section("Footprint")
	p.printf("  Total:      %.2f m³/h\n", f.TotalWaterFootprint)
	p.printf("  Intensity:  %.4f m³/t\n", f.WaterIntensity)
	p.printf("  Rating:     %s\n", f.EfficiencyRating)
	if len(f.WaterTypeBreakdown) > 0 {
		p.printf("  By Source:\n")
		writeFlows(p, f.WaterTypeBreakdown, "m³/h")
	}
	if len(f.ContaminantEmissions) > 0 {
		p.printf("  Emissions:\n")
		writeFlows(p, f.ContaminantEmissions, "kg/h")
	}
	return p.err
}

// YieldReport collects reaction yields and material efficiency. A nil
// ProcessYield was not requested.
type YieldReport struct {
	Efficiency   balance.Efficiency
	ProcessYield *balance.ProcessYieldResult
	Reactions    []model.Reaction
}

// WriteYield renders material efficiency, the stored reactions and,
// when requested, the process yield of one product.
func WriteYield(w io.Writer, r YieldReport) error {
	p := &printer{w: w}
	e := r.Efficiency
	p.printf("Material Efficiency\n")
	p.printf("  Input:      %.2f kg/h\n", e.TotalInput)
	p.printf("  Product:    %.2f kg/h\n", e.TotalProduct)
	p.printf("  By-product: %.2f kg/h\n", e.TotalByproduct)
	p.printf("  Waste:      %.2f kg/h\n", e.TotalWaste)
	p.printf("  Efficiency: %.2f%%\n", e.MaterialEfficiency)
	p.printf("  E-factor:   %.3f\n", e.EFactor)
	p.printf("  Yield:      %.2f%%\n", e.OverallYield)
	p.printf("  Utilization:\n")
	if len(e.ComponentUtilization) == 0 {
		p.printf("    (none)\n")
	}
	for _, id := range sortedKeys(e.ComponentUtilization) {
		p.printf("    %s: %.2f%%\n", id, e.ComponentUtilization[id])
	}

	p.section("Reactions")
	if len(r.Reactions) == 0 {
		p.printf("  (none)\n")
	}
	for _, rx := range r.Reactions {
		p.printf("  %s %s: %s -> %s, conversion %.2f%%, selectivity %.2f%%\n",
			rx.ID, rx.Name, list(rx.Reactants()), list(rx.Products()), rx.Conversion, rx.MeanSelectivity())
	}

	if py := r.ProcessYield; py != nil {
		p.section("Process Yield")
		p.printf("  Product: %s\n", py.MainProduct)
		p.printf("  Formed:  %.2f of %.2f feed\n", py.TotalProduct, py.TotalFeed)
		p.printf("  Yield:   %.2f%%\n", py.OverallYield)
		for _, id := range sortedKeys(py.ReactionYields) {
			p.printf("    %s: %.2f\n", id, py.ReactionYields[id])
		}
	}
	return p.err
}

func writeFlows(p *printer, flows map[string]float64, unit string) {
	if len(flows) == 0 {
		p.printf("    (none)\n")
		return
	}
	for _, k := range sortedKeys(flows) {
		p.printf("    %s: %.2f %s\n", k, flows[k], unit)
	}
}

func years(y balance.Years) string {
	if y.IsNever() {
		return "never"
	}
	return y.String() + " years"
}

func balanced(ok bool) string {
	if ok {
		return "balanced"
	}
	return "unbalanced"
}

func list(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
