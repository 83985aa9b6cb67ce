package model

import (
	"math"
	"sort"
	"strings"
)

// Reaction is a chemical reaction with a fixed conversion of its limiting
// reactant. Stoichiometric coefficients are negative for reactants and
// positive for products.
type Reaction struct {
	ID            string             `json:"reaction_id" yaml:"reaction_id"`
	Name          string             `json:"name" yaml:"name"`
	Stoichiometry map[string]float64 `json:"stoichiometry" yaml:"stoichiometry"`

	// Conversion of the limiting reactant, in percent.
	Conversion float64 `json:"conversion" yaml:"conversion"`

	// Selectivity maps product id to percent.
	Selectivity map[string]float64 `json:"selectivity,omitempty" yaml:"selectivity,omitempty"`

	// HeatOfReaction is in kJ/mol.
	HeatOfReaction float64 `json:"heat_of_reaction,omitempty" yaml:"heat_of_reaction,omitempty"`
}

// Reactants returns the ids with a negative coefficient, sorted.
func (r Reaction) Reactants() []string {
	return r.components(func(c float64) bool { return c < 0 })
}

// Products returns the ids with a positive coefficient, sorted.
func (r Reaction) Products() []string {
	return r.components(func(c float64) bool { return c > 0 })
}

func (r Reaction) components(keep func(float64) bool) []string {
	var ids []string
	for id, c := range r.Stoichiometry {
		if keep(c) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SelectivityOf returns the selectivity towards a product in percent. A
// product without an entry is fully selective.
func (r Reaction) SelectivityOf(product string) float64 {
	if s, ok := r.Selectivity[product]; ok {
		return s
	}
	return 100
}

// MeanSelectivity averages the declared selectivities in percent, or
// returns 100 when none are declared.
func (r Reaction) MeanSelectivity() float64 {
	if len(r.Selectivity) == 0 {
		return 100
	}
	var sum float64
	for _, s := range r.Selectivity {
		sum += s
	}
	return sum / float64(len(r.Selectivity))
}

// Validate checks the stoichiometry and the percentages.
func (r Reaction) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return invalid("reaction", r.ID, "reaction_id", "required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return invalid("reaction", r.ID, "name", "required")
	}
	for id, c := range r.Stoichiometry {
		if c == 0 || math.IsNaN(c) {
			return invalid("reaction", r.ID, "stoichiometry", "coefficient of %q must be non-zero", id)
		}
	}
	if len(r.Reactants()) == 0 {
		return invalid("reaction", r.ID, "stoichiometry", "at least one reactant is required")
	}
	if r.Conversion < 0 || r.Conversion > 100 {
		return invalid("reaction", r.ID, "conversion", "must be within 0..100, got %g", r.Conversion)
	}
	for id, s := range r.Selectivity {
		if r.Stoichiometry[id] <= 0 {
			return invalid("reaction", r.ID, "selectivity", "%q is not a product", id)
		}
		if s < 0 || s > 100 {
			return invalid("reaction", r.ID, "selectivity", "%q must be within 0..100, got %g", id, s)
		}
	}
	return nil
}
