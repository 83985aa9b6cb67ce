package flowsheet

import (
	"context"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/engine"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// Store is the persistence a project is imported into and exported from.
// *store.Store implements it.
type Store interface {
	UpsertMaterial(ctx context.Context, m model.Material) error
	UpsertUnit(ctx context.Context, u model.ProcessUnit) error
	UpsertStream(ctx context.Context, s model.Stream) error
	UpsertEquipment(ctx context.Context, e model.Equipment) error
	UpsertHeatStream(ctx context.Context, h model.HeatStream) error
	UpsertHeatExchanger(ctx context.Context, x model.HeatExchanger) error
	UpsertWaterStream(ctx context.Context, w model.WaterStream) error
	UpsertTreatmentUnit(ctx context.Context, t model.TreatmentUnit) error
	UpsertReaction(ctx context.Context, r model.Reaction) error

	ListMaterials(ctx context.Context) ([]model.Material, error)
	ListUnits(ctx context.Context) ([]model.ProcessUnit, error)
	ListStreams(ctx context.Context) ([]model.Stream, error)
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
	ListHeatStreams(ctx context.Context) ([]model.HeatStream, error)
	ListHeatExchangers(ctx context.Context) ([]model.HeatExchanger, error)
	ListWaterStreams(ctx context.Context) ([]model.WaterStream, error)
	ListTreatmentUnits(ctx context.Context) ([]model.TreatmentUnit, error)
	ListReactions(ctx context.Context) ([]model.Reaction, error)
}

var _ Store = (*store.Store)(nil)

// Recalculator recomputes every unit balance of a project.
type Recalculator interface {
	CalculateAll(ctx context.Context) (engine.Report, error)
}

// Import writes every entity of p, referenced entities first, and then
// recomputes the whole project. Entities already stored but absent from p
// are left alone.
func Import(ctx context.Context, s Store, r Recalculator, p *Project) (engine.Report, error) {
	if err := p.Validate(); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.Materials, s.UpsertMaterial, "material"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.Units, s.UpsertUnit, "unit"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.Streams, s.UpsertStream, "stream"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.Equipment, s.UpsertEquipment, "equipment"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.HeatStreams, s.UpsertHeatStream, "heat stream"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.HeatExchangers, s.UpsertHeatExchanger, "heat exchanger"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.WaterStreams, s.UpsertWaterStream, "water stream"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.TreatmentUnits, s.UpsertTreatmentUnit, "treatment unit"); err != nil {
		return engine.Report{}, err
	}
	if err := write(ctx, p.Reactions, s.UpsertReaction, "reaction"); err != nil {
		return engine.Report{}, err
	}
	return r.CalculateAll(ctx)
}

func write[T any](ctx context.Context, items []T, upsert func(context.Context, T) error, kind string) error {
	for i, item := range items {
		if err := upsert(ctx, item); err != nil {
			return fmt.Errorf("import %s #%d: %w", kind, i, err)
		}
	}
	return nil
}

// Export reads every stored entity into a project named name.
func Export(ctx context.Context, s Store, name string) (*Project, error) {
	p := &Project{Name: name}
	var err error
	if p.Materials, err = s.ListMaterials(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.Units, err = s.ListUnits(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.Streams, err = s.ListStreams(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.Equipment, err = s.ListEquipment(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.HeatStreams, err = s.ListHeatStreams(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.HeatExchangers, err = s.ListHeatExchangers(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.WaterStreams, err = s.ListWaterStreams(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.TreatmentUnits, err = s.ListTreatmentUnits(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if p.Reactions, err = s.ListReactions(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return p, nil
}
