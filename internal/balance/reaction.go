package balance

import (
	"math"
	"sort"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// StandardFeed is the amount of each reactant assumed by ProcessYield.
const StandardFeed = 100.0

// ReactionExtent returns the extent of r for the given feed amounts and the
// limiting reactant. The limiting reactant is the one present in feed with
// the smallest amount per unit coefficient; ties go to the lowest id. The
// extent is the limiting reactant's feed times the conversion. Without a
// reactant in feed the extent is 0 and limiting is empty.
func ReactionExtent(r model.Reaction, feed map[string]float64) (extent float64, limiting string) {
	ratio := math.Inf(1)
	for _, id := range r.Reactants() {
		amount, ok := feed[id]
		if !ok {
			continue
		}
		if q := amount / math.Abs(r.Stoichiometry[id]); q < ratio {
			ratio = q
			limiting = id
		}
	}
	if limiting == "" {
		return 0, ""
	}
	return feed[limiting] * r.Conversion / 100, limiting
}

// ProductYields returns extent × coefficient × selectivity for every
// product of r.
func ProductYields(r model.Reaction, feed map[string]float64) map[string]float64 {
	extent, _ := ReactionExtent(r, feed)
	yields := make(map[string]float64)
	for _, id := range r.Products() {
		yields[id] = extent * r.Stoichiometry[id] * r.SelectivityOf(id) / 100
	}
	return yields
}

// ProcessYieldResult is the yield of one product across a reaction set.
type ProcessYieldResult struct {
	MainProduct    string             `json:"main_product"`
	TotalFeed      float64            `json:"total_feed"`
	TotalProduct   float64            `json:"total_product"`
	OverallYield   float64            `json:"overall_yield"`
	ReactionYields map[string]float64 `json:"reaction_yields"`
	Reactions      int                `json:"number_of_reactions"`
}

// ProcessYield sums the amount of product formed by every reaction that
// makes it, each fed StandardFeed of every reactant, and relates the total
// to totalFeed in percent.
func ProcessYield(reactions []model.Reaction, product string, totalFeed float64) ProcessYieldResult {
	res := ProcessYieldResult{
		MainProduct:    product,
		TotalFeed:      totalFeed,
		ReactionYields: make(map[string]float64),
	}
	for _, r := range reactions {
		if r.Stoichiometry[product] <= 0 {
			continue
		}
		feed := make(map[string]float64)
		for _, id := range r.Reactants() {
			feed[id] = StandardFeed
		}
		y := ProductYields(r, feed)[product]
		res.ReactionYields[r.ID] = y
		res.TotalProduct += y
	}
	res.Reactions = len(res.ReactionYields)
	if totalFeed > 0 {
		res.OverallYield = res.TotalProduct / totalFeed * 100
	}
	return res
}

// Efficiency summarizes how much of the boundary feed ends up as product.
// Flows are in kg/h.
type Efficiency struct {
	TotalInput           float64            `json:"total_material_input"`
	TotalProduct         float64            `json:"total_product_output"`
	TotalByproduct       float64            `json:"total_byproduct"`
	TotalWaste           float64            `json:"total_waste"`
	MaterialEfficiency   float64            `json:"material_efficiency"`
	EFactor              float64            `json:"e_factor"`
	OverallYield         float64            `json:"product_yield"`
	ComponentUtilization map[string]float64 `json:"component_utilization"`
}

// MaterialEfficiency classifies streams by model.Stream.Role and reports
// product over feed, the E-factor (waste per product), the chained
// conversion × mean selectivity yield of the reactions and, for every
// reactant present in a feed, its utilization capped at 100%.
func MaterialEfficiency(streams []model.Stream, reactions []model.Reaction) Efficiency {
	e := Efficiency{ComponentUtilization: make(map[string]float64)}
	fed := make(map[string]bool)
	for _, s := range streams {
		switch s.Role() {
		case model.RoleFeed:
			e.TotalInput += s.FlowRate
			for id := range s.Composition {
				fed[id] = true
			}
		case model.RoleProduct:
			e.TotalProduct += s.FlowRate
		case model.RoleByproduct:
			e.TotalByproduct += s.FlowRate
		case model.RoleWaste:
			e.TotalWaste += s.FlowRate
		}
	}
	if e.TotalInput > 0 {
		e.MaterialEfficiency = e.TotalProduct / e.TotalInput * 100
		if e.TotalProduct > 0 {
			e.EFactor = e.TotalWaste / e.TotalProduct
		}
	}
	e.OverallYield = OverallYield(reactions)

	ordered := append([]model.Reaction(nil), reactions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	for _, r := range ordered {
		for _, id := range r.Reactants() {
			if fed[id] {
				e.ComponentUtilization[id] = math.Min(100, r.Conversion)
			}
		}
	}
	return e
}

// OverallYield chains conversion × mean selectivity over every reaction,
// in percent. An empty set yields 0.
func OverallYield(reactions []model.Reaction) float64 {
	if len(reactions) == 0 {
		return 0
	}
	y := 1.0
	for _, r := range reactions {
		y *= r.Conversion / 100 * r.MeanSelectivity() / 100
	}
	return y * 100
}
