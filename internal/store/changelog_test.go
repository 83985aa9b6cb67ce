package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

func TestRecordChange_VersionsPerEntity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.RecordChange(ctx, model.KindStream, model.OpAdd, "S1", map[string]any{"flow_rate": 100}, "", "pass-1")
	require.NoError(t, err)
	second, err := s.RecordChange(ctx, model.KindStream, model.OpUpdate, "S1", map[string]any{"flow_rate": 90}, "alice", "pass-2")
	require.NoError(t, err)
	other, err := s.RecordChange(ctx, model.KindUnit, model.OpAdd, "S1", nil, "", "pass-3")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, int64(1), other.Version, "versions are counted per module")
	assert.Equal(t, DefaultChangedBy, first.ChangedBy)
	assert.Equal(t, "alice", second.ChangedBy)
	assert.NotEqual(t, first.DataHash, second.DataHash)
	assert.Len(t, first.ID, 26)

	changes, err := s.ListChanges(ctx, model.KindStream, "S1")
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, first, changes[0])
	assert.Equal(t, second, changes[1])

	all, err := s.ListChanges(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, other.ID, all[2].ID)
}

func TestRecordChange_HashMatchesPayload(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	data := map[string]any{"name": "feed", "flow_rate": 100.0}
	rec, err := s.RecordChange(ctx, model.KindStream, model.OpAdd, "S1", data, "", "")
	require.NoError(t, err)

	want, err := model.ChangeHash("S1", model.OpAdd, data)
	require.NoError(t, err)
	assert.Equal(t, want, rec.DataHash)
}
