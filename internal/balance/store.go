package balance

import (
	"context"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

//go:generate mockgen -source=store.go -destination=../mocks/balance_store.go -package=mocks -mock_names=Store=MockBalanceStore

// Store is the slice of the persistence facade the calculators use.
// *store.Store satisfies it.
type Store interface {
	GetUnit(ctx context.Context, id string) (model.ProcessUnit, error)
	StreamsForUnit(ctx context.Context, unitID string) ([]model.Stream, error)
	ListMaterials(ctx context.Context) ([]model.Material, error)
	GetMaterialBalance(ctx context.Context, unitID string) (model.MaterialBalance, error)
	UpsertMaterialBalance(ctx context.Context, b model.MaterialBalance) error
	UpsertHeatBalance(ctx context.Context, b model.HeatBalance) error
	UpsertWaterBalance(ctx context.Context, b model.WaterBalance) error
}
