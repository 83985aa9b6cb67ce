package engine

import (
	"context"

	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// Store is the persistence the engine reads and rewrites while
// propagating. *store.Store implements it.
type Store interface {
	GetMaterial(ctx context.Context, id string) (model.Material, error)
	UpsertMaterial(ctx context.Context, m model.Material) error
	DeleteMaterial(ctx context.Context, id string) (bool, error)

	GetStream(ctx context.Context, id string) (model.Stream, error)
	UpsertStream(ctx context.Context, s model.Stream) error
	DeleteStream(ctx context.Context, id string) (bool, error)
	StreamsContainingMaterial(ctx context.Context, materialID string) ([]model.Stream, error)
	RemoveMaterialFromStreams(ctx context.Context, materialID string) ([]string, error)

	GetUnit(ctx context.Context, id string) (model.ProcessUnit, error)
	ListUnits(ctx context.Context) ([]model.ProcessUnit, error)
	UpsertUnit(ctx context.Context, u model.ProcessUnit) error
	DeleteUnit(ctx context.Context, id string) (bool, error)

	GetEquipment(ctx context.Context, id string) (model.Equipment, error)
	UpsertEquipment(ctx context.Context, e model.Equipment) error
	DeleteEquipment(ctx context.Context, id string) (bool, error)
	UnitsForEquipment(ctx context.Context, equipmentID string) ([]string, error)

	EnsureMaterialBalance(ctx context.Context, unitID string) (model.MaterialBalance, error)
	MarkMaterialBalancesForRecalculation(ctx context.Context, materialID string) ([]string, error)
	DeleteBalancesForUnit(ctx context.Context, unitID string) error

	RecordChange(ctx context.Context, module model.Kind, op model.Operation, entityID string, data any, changedBy, passToken string) (store.ChangeRecord, error)
}

var _ Store = (*store.Store)(nil)
