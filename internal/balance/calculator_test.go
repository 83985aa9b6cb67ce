package balance_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/mocks"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
)

type calcFixture struct {
	store    *mocks.MockBalanceStore
	logs     *observer.ObservedLogs
	recorder *notify.Recorder
	calc     *balance.Calculator
}

func newCalcFixture(t *testing.T) *calcFixture {
	ctrl := gomock.NewController(t)
	core, logs := observer.New(zapcore.DebugLevel)
	f := &calcFixture{
		store:    mocks.NewMockBalanceStore(ctrl),
		logs:     logs,
		recorder: notify.NewRecorder(),
	}
	f.calc = balance.NewCalculator(f.store,
		balance.WithLogger(zap.New(core)),
		balance.WithNotifier(f.recorder),
	)
	return f
}

func (f *calcFixture) errorLogs() []observer.LoggedEntry {
	return f.logs.FilterLevelExact(zapcore.ErrorLevel).All()
}

var mixer = model.ProcessUnit{ID: "U1", Name: "Mixer", Type: model.UnitMixer}

func mixerStreams() []model.Stream {
	return []model.Stream{
		stream("S1", "", "U1", 100, model.Composition{"A": 1}),
		stream("S2", "U1", "", 100, model.Composition{"A": 1}),
	}
}

func TestCalculator_StreamReadFailure(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	f.store.EXPECT().GetUnit(ctx, "U1").Return(mixer, nil)
	f.store.EXPECT().StreamsForUnit(ctx, "U1").Return(nil, boom)

	out := f.calc.Mass(ctx, "U1")

	assert.True(t, out.Failed())
	assert.Equal(t, balance.ErrCodeStoreRead, balance.CodeOf(out.Err))
	assert.ErrorIs(t, out.Err, boom)
	assert.False(t, balance.IsNoOp(out.Err))
	assert.Empty(t, f.recorder.Events(), "failed runs do not emit calculation_completed")

	logged := f.errorLogs()
	require.Len(t, logged, 1)
	fields := logged[0].ContextMap()
	assert.Equal(t, "U1", fields["unit_id"])
	assert.Equal(t, "material_balance", fields["calc"])
}

func TestCalculator_UnitReadFailure(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()

	f.store.EXPECT().GetUnit(ctx, "U1").Return(model.ProcessUnit{}, errors.New("database is locked"))

	out := f.calc.Heat(ctx, "U1")

	assert.True(t, out.Failed())
	assert.Equal(t, balance.ErrCodeStoreRead, balance.CodeOf(out.Err))
	assert.Len(t, f.errorLogs(), 1)
}

func TestCalculator_MissingUnitIsSkippedNotLoggedAsError(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()

	f.store.EXPECT().GetUnit(ctx, "U9").Return(model.ProcessUnit{}, fmt.Errorf("unit %q: %w", "U9", model.ErrNotFound))

	out := f.calc.Water(ctx, "U9")

	assert.True(t, out.Skipped())
	assert.Empty(t, f.errorLogs())
	assert.Equal(t, 1, f.logs.FilterMessage("calculation skipped").Len())
}

func TestCalculator_WriteFailureEmitsNothing(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()

	f.store.EXPECT().GetUnit(ctx, "U1").Return(mixer, nil)
	f.store.EXPECT().StreamsForUnit(ctx, "U1").Return(mixerStreams(), nil)
	f.store.EXPECT().GetMaterialBalance(ctx, "U1").Return(model.MaterialBalance{}, model.ErrNotFound)
	f.store.EXPECT().UpsertMaterialBalance(ctx, gomock.Any()).Return(errors.New("constraint failed"))

	out := f.calc.Mass(ctx, "U1")

	assert.True(t, out.Failed())
	assert.Equal(t, balance.ErrCodeStoreWrite, balance.CodeOf(out.Err))
	assert.Empty(t, f.recorder.Events())
	assert.Len(t, f.errorLogs(), 1)
}

func TestCalculator_MaterialReadFailure(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()

	f.store.EXPECT().GetUnit(ctx, "U1").Return(mixer, nil)
	f.store.EXPECT().StreamsForUnit(ctx, "U1").Return(mixerStreams(), nil)
	f.store.EXPECT().ListMaterials(ctx).Return(nil, errors.New("no such table: materials"))

	out := f.calc.Heat(ctx, "U1")

	assert.True(t, out.Failed())
	assert.Equal(t, balance.ErrCodeStoreRead, balance.CodeOf(out.Err))
}

func TestCalculator_PanicBecomesInternalFailure(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()

	f.store.EXPECT().GetUnit(ctx, "U1").DoAndReturn(func(context.Context, string) (model.ProcessUnit, error) {
		panic("nil map write")
	})

	out := f.calc.Mass(ctx, "U1")

	assert.True(t, out.Failed())
	assert.Equal(t, balance.ErrCodeInternal, balance.CodeOf(out.Err))
	assert.Contains(t, out.Err.Error(), "nil map write")
	assert.Len(t, f.errorLogs(), 1)
}

func TestCalculator_WritesComputedRecord(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()

	f.store.EXPECT().GetUnit(ctx, "U1").Return(mixer, nil)
	f.store.EXPECT().StreamsForUnit(ctx, "U1").Return(mixerStreams(), nil)
	f.store.EXPECT().GetMaterialBalance(ctx, "U1").Return(model.MaterialBalance{}, model.ErrNotFound)
	f.store.EXPECT().UpsertMaterialBalance(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, b model.MaterialBalance) error {
			assert.Equal(t, model.StatusBalanced, b.Status)
			assert.Equal(t, model.DefaultMassTolerance, b.Tolerance)
			assert.Equal(t, []string{"S1"}, b.InputStreams)
			return nil
		})

	out := f.calc.Mass(ctx, "U1")

	require.True(t, out.Computed())
	require.Len(t, f.recorder.Events(), 1)
	assert.Equal(t, "calculation_completed material_balance U1 balanced", f.recorder.Trace()[0])
}

func TestCalculator_RunDispatch(t *testing.T) {
	f := newCalcFixture(t)
	ctx := context.Background()

	out := f.calc.Run(ctx, balance.CalcType("entropy_balance"), "U1")

	assert.True(t, out.Failed())
	assert.Equal(t, balance.ErrCodeInternal, balance.CodeOf(out.Err))
}

func TestCalcError_Message(t *testing.T) {
	err := &balance.CalcError{
		Code:    balance.ErrCodeStoreWrite,
		Calc:    balance.CalcHeat,
		UnitID:  "U1",
		Message: "write heat balance",
		Err:     errors.New("disk full"),
	}
	assert.Equal(t, "STORE_WRITE: heat_balance unit=U1: write heat balance: disk full", err.Error())

	wrapped := fmt.Errorf("sync: %w", err)
	assert.Equal(t, balance.ErrCodeStoreWrite, balance.CodeOf(wrapped))
	assert.Equal(t, balance.ErrorCode(""), balance.CodeOf(errors.New("plain")))
}
