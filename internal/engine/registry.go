package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// Target names a kind of dependent data a change propagates to.
type Target int

const (
	// TargetStreams is the set of stream compositions.
	TargetStreams Target = iota + 1
	// TargetEquipment is the equipment list.
	TargetEquipment
	// TargetMassBalance is the per-unit material balance.
	TargetMassBalance
	// TargetHeatBalance is the per-unit heat balance.
	TargetHeatBalance
	// TargetWaterBalance is the per-unit water balance.
	TargetWaterBalance
)

var targetNames = map[Target]string{
	TargetStreams:      "streams",
	TargetEquipment:    "equipment",
	TargetMassBalance:  "material_balance",
	TargetHeatBalance:  "heat_balance",
	TargetWaterBalance: "water_balance",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// Handler propagates one change to one target. It resolves the affected
// units itself and runs calculations through the pass.
type Handler func(ctx context.Context, p *Pass, c Change) error

// Rule is the propagation rule of one source kind: the operations that
// trigger it, the targets in dispatch order, and a handler per target.
// Targets without a handler are listed but skipped.
type Rule struct {
	Source   model.Kind
	Triggers []model.Operation
	Targets  []Target
	Handlers map[Target]Handler
}

// Triggered reports whether op fires the rule.
func (r Rule) Triggered(op model.Operation) bool {
	return slices.Contains(r.Triggers, op)
}

// Description renders the rule as "source->target,target".
func (r Rule) Description() string {
	desc := string(r.Source) + "->"
	for i, t := range r.Targets {
		if i > 0 {
			desc += ","
		}
		desc += t.String()
	}
	return desc
}

// Registry holds the propagation rules, one per source kind. It is built
// once at startup and passed to the engine.
type Registry struct {
	rules map[model.Kind]Rule
	order []model.Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[model.Kind]Rule)}
}

// Register adds a rule. The rule is copied; later changes to the caller's
// slices and map do not affect the registry.
func (r *Registry) Register(rule Rule) error {
	if rule.Source == "" {
		return fmt.Errorf("register rule: source is required")
	}
	if _, dup := r.rules[rule.Source]; dup {
		return fmt.Errorf("register rule: duplicate source %q", rule.Source)
	}
	seen := make(map[Target]bool, len(rule.Targets))
	for _, t := range rule.Targets {
		if seen[t] {
			return fmt.Errorf("register rule %q: duplicate target %s", rule.Source, t)
		}
		seen[t] = true
	}
	for t := range rule.Handlers {
		if !seen[t] {
			return fmt.Errorf("register rule %q: handler for unlisted target %s", rule.Source, t)
		}
	}

	handlers := make(map[Target]Handler, len(rule.Handlers))
	for t, h := range rule.Handlers {
		handlers[t] = h
	}
	r.rules[rule.Source] = Rule{
		Source:   rule.Source,
		Triggers: slices.Clone(rule.Triggers),
		Targets:  slices.Clone(rule.Targets),
		Handlers: handlers,
	}
	r.order = append(r.order, rule.Source)
	return nil
}

// MustRegister is Register for rule tables known at compile time.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Lookup returns the rule for a source kind.
func (r *Registry) Lookup(source model.Kind) (Rule, bool) {
	rule, ok := r.rules[source]
	return rule, ok
}

// Sources lists the registered source kinds in registration order.
func (r *Registry) Sources() []model.Kind {
	return slices.Clone(r.order)
}

var allOps = []model.Operation{model.OpAdd, model.OpUpdate, model.OpDelete}

// DefaultRegistry returns the rule table of the four propagating kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Rule{
		Source:   model.KindMaterial,
		Triggers: allOps,
		Targets:  []Target{TargetStreams, TargetMassBalance, TargetHeatBalance},
		Handlers: map[Target]Handler{
			TargetStreams:     materialToStreams,
			TargetMassBalance: materialToMass,
			TargetHeatBalance: materialToHeat,
		},
	})
	r.MustRegister(Rule{
		Source:   model.KindStream,
		Triggers: allOps,
		Targets:  []Target{TargetMassBalance, TargetHeatBalance, TargetWaterBalance},
		Handlers: map[Target]Handler{
			TargetMassBalance:  streamToMass,
			TargetHeatBalance:  streamToHeat,
			TargetWaterBalance: streamToWater,
		},
	})
	r.MustRegister(Rule{
		Source:   model.KindUnit,
		Triggers: allOps,
		Targets:  []Target{TargetEquipment, TargetMassBalance, TargetHeatBalance},
		Handlers: map[Target]Handler{
			TargetEquipment:   unitToEquipment,
			TargetMassBalance: unitToMass,
			TargetHeatBalance: unitToHeat,
		},
	})
	r.MustRegister(Rule{
		Source:   model.KindEquipment,
		Triggers: allOps,
		Targets:  []Target{TargetMassBalance, TargetHeatBalance, TargetWaterBalance},
		Handlers: map[Target]Handler{
			TargetMassBalance:  equipmentToMass,
			TargetHeatBalance:  equipmentToHeat,
			TargetWaterBalance: equipmentToWater,
		},
	})
	return r
}
