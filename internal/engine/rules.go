package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
)

// SpecificHeatThreshold is the smallest specific heat change, in
// kJ/(kg·K), that makes a material update recompute heat balances.
const SpecificHeatThreshold = 0.001

// ========== Material ==========

// materialToStreams strips a deleted material from every stream and
// renormalizes the remaining fractions.
func materialToStreams(ctx context.Context, p *Pass, c Change) error {
	if c.Op != model.OpDelete {
		return nil
	}
	ids, err := p.Store().RemoveMaterialFromStreams(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p.Notify(notify.DataUpdated{Module: string(model.KindStream), ID: id})
	}
	p.Logger().Debug("material removed from streams", zap.String("material_id", c.ID), zap.Strings("streams", ids))
	return nil
}

// materialToMass marks balances that used a deleted material for
// recalculation, and recomputes the units touched by an added or updated
// one.
func materialToMass(ctx context.Context, p *Pass, c Change) error {
	if c.Op == model.OpDelete {
		units, err := p.Store().MarkMaterialBalancesForRecalculation(ctx, c.ID)
		if err != nil {
			return err
		}
		p.Logger().Debug("balances marked for recalculation", zap.String("material_id", c.ID), zap.Strings("units", units))
		return nil
	}
	units, err := unitsForMaterial(ctx, p.Store(), c.ID)
	if err != nil {
		return err
	}
	return p.Calculate(ctx, balance.CalcMass, units...)
}

// materialToHeat recomputes heat balances when the specific heat moved by
// more than SpecificHeatThreshold. A material without a prior version
// compares against zero.
func materialToHeat(ctx context.Context, p *Pass, c Change) error {
	if c.Op == model.OpDelete {
		return nil
	}
	m, ok := c.Material()
	if !ok {
		return nil
	}
	prior, _ := c.PriorMaterial()
	if math.Abs(m.SpecificHeat-prior.SpecificHeat) <= SpecificHeatThreshold {
		return nil
	}
	units, err := unitsForMaterial(ctx, p.Store(), c.ID)
	if err != nil {
		return err
	}
	return p.Calculate(ctx, balance.CalcHeat, units...)
}

// unitsForMaterial returns the endpoints of every stream containing the
// material, in stream order, without duplicates.
func unitsForMaterial(ctx context.Context, s Store, materialID string) ([]string, error) {
	streams, err := s.StreamsContainingMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	var units []string
	seen := make(map[string]bool)
	for _, st := range streams {
		for _, u := range st.Endpoints() {
			if !seen[u] {
				seen[u] = true
				units = append(units, u)
			}
		}
	}
	return units, nil
}

// ========== Stream ==========

// streamUnits resolves the stream a change is about and the units it
// touches. An update that moved the stream also reaches its old endpoints.
func streamUnits(ctx context.Context, p *Pass, c Change) (model.Stream, []string, error) {
	s, ok := c.Stream()
	if !ok {
		if c.Op == model.OpDelete {
			return model.Stream{}, nil, nil
		}
		var err error
		s, err = p.Store().GetStream(ctx, c.ID)
		if errors.Is(err, model.ErrNotFound) {
			return model.Stream{}, nil, NewUnknownEntityError(c.Source, c.ID, err)
		}
		if err != nil {
			return model.Stream{}, nil, err
		}
	}
	units := s.Endpoints()
	if prior, ok := c.PriorStream(); ok {
		for _, u := range prior.Endpoints() {
			if !slices.Contains(units, u) {
				units = append(units, u)
			}
		}
	}
	return s, units, nil
}

func streamToMass(ctx context.Context, p *Pass, c Change) error {
	_, units, err := streamUnits(ctx, p, c)
	if err != nil {
		return err
	}
	return p.Calculate(ctx, balance.CalcMass, units...)
}

func streamToHeat(ctx context.Context, p *Pass, c Change) error {
	_, units, err := streamUnits(ctx, p, c)
	if err != nil {
		return err
	}
	return p.Calculate(ctx, balance.CalcHeat, units...)
}

// streamToWater recomputes water balances only for water-bearing streams.
func streamToWater(ctx context.Context, p *Pass, c Change) error {
	s, units, err := streamUnits(ctx, p, c)
	if err != nil {
		return err
	}
	water := s.IsWaterBearing()
	if prior, ok := c.PriorStream(); ok && prior.IsWaterBearing() {
		water = true
	}
	if !water {
		return nil
	}
	return p.Calculate(ctx, balance.CalcWater, units...)
}

// ========== Process unit ==========

// unitToEquipment keeps the unit's derived equipment record in step: it is
// created on add, renamed on update and removed on delete.
func unitToEquipment(ctx context.Context, p *Pass, c Change) error {
	eqID := model.EquipmentIDForUnit(c.ID)
	switch c.Op {
	case model.OpAdd:
		u, ok := c.Unit()
		if !ok {
			return nil
		}
		eq := model.EquipmentFromUnit(u)
		if err := p.Store().UpsertEquipment(ctx, eq); err != nil {
			return err
		}
		p.Notify(notify.DataUpdated{Module: string(model.KindEquipment), ID: eq.ID})
	case model.OpUpdate:
		u, ok := c.Unit()
		if !ok {
			return nil
		}
		eq, err := p.Store().GetEquipment(ctx, eqID)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		eq.Name = model.EquipmentName(u.Name, eq.Type)
		if eq.Specifications == nil {
			eq.Specifications = map[string]string{}
		}
		eq.Specifications[model.SpecDescription] = u.Description
		if err := p.Store().UpsertEquipment(ctx, eq); err != nil {
			return err
		}
		p.Notify(notify.DataUpdated{Module: string(model.KindEquipment), ID: eq.ID})
	case model.OpDelete:
		removed, err := p.Store().DeleteEquipment(ctx, eqID)
		if err != nil {
			return err
		}
		if removed {
			p.Notify(notify.DataUpdated{Module: string(model.KindEquipment), ID: eqID})
		}
	}
	return nil
}

// unitToMass creates a pending balance for a new unit, recomputes an
// updated one and drops the balances of a deleted one.
func unitToMass(ctx context.Context, p *Pass, c Change) error {
	switch c.Op {
	case model.OpAdd:
		if _, err := p.Store().GetUnit(ctx, c.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return NewUnknownEntityError(c.Source, c.ID, err)
			}
			return err
		}
		_, err := p.Store().EnsureMaterialBalance(ctx, c.ID)
		return err
	case model.OpUpdate:
		return p.Calculate(ctx, balance.CalcMass, c.ID)
	case model.OpDelete:
		if err := p.Store().DeleteBalancesForUnit(ctx, c.ID); err != nil {
			return fmt.Errorf("drop balances of %s: %w", c.ID, err)
		}
	}
	return nil
}

// unitToHeat recomputes the heat balance of an added or updated unit.
func unitToHeat(ctx context.Context, p *Pass, c Change) error {
	if c.Op == model.OpDelete {
		return nil
	}
	return p.Calculate(ctx, balance.CalcHeat, c.ID)
}

// ========== Equipment ==========

func equipmentUnits(ctx context.Context, p *Pass, c Change) ([]string, error) {
	if c.Op == model.OpDelete {
		return nil, nil
	}
	return p.Store().UnitsForEquipment(ctx, c.ID)
}

func equipmentToMass(ctx context.Context, p *Pass, c Change) error {
	units, err := equipmentUnits(ctx, p, c)
	if err != nil {
		return err
	}
	return p.Calculate(ctx, balance.CalcMass, units...)
}

func equipmentToHeat(ctx context.Context, p *Pass, c Change) error {
	units, err := equipmentUnits(ctx, p, c)
	if err != nil {
		return err
	}
	return p.Calculate(ctx, balance.CalcHeat, units...)
}

// equipmentToWater recomputes water balances for water-drawing equipment
// (pumps, cooling towers, boilers).
func equipmentToWater(ctx context.Context, p *Pass, c Change) error {
	if c.Op == model.OpDelete {
		return nil
	}
	eq, ok := c.Equipment()
	if !ok {
		var err error
		eq, err = p.Store().GetEquipment(ctx, c.ID)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	if !eq.DrawsWater() {
		return nil
	}
	units, err := equipmentUnits(ctx, p, c)
	if err != nil {
		return err
	}
	return p.Calculate(ctx, balance.CalcWater, units...)
}
