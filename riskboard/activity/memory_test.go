package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/model"
)

func entry(kind model.EntityType, id string, action model.Action) model.ActivityLogEntry {
	return model.ActivityLogEntry{EntityType: kind, EntityID: id, Action: action}
}

func TestMemoryRecorder(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRecorder()

	got, err := r.Record(ctx,
		entry(model.EntityFinding, "f-1", model.ActionCreated),
		entry(model.EntityFinding, "f-2", model.ActionCreated),
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)

	_, err = r.Record(ctx,
		entry(model.EntityFinding, "f-1", model.ActionUpdated),
		entry(model.EntityAsset, "a-1", model.ActionCreated),
	)
	require.NoError(t, err)

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []int64
	}{
		{name: "all, newest first", filter: Filter{}, wantIDs: []int64{4, 3, 2, 1}},
		{name: "by entity", filter: Filter{EntityType: model.EntityFinding, EntityID: "f-1"}, wantIDs: []int64{3, 1}},
		{name: "by type", filter: Filter{EntityType: model.EntityAsset}, wantIDs: []int64{4}},
		{name: "limited", filter: Filter{Limit: 2}, wantIDs: []int64{4, 3}},
		{name: "no match", filter: Filter{EntityID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := r.List(ctx, tt.filter)
			require.NoError(t, err)
			var ids []int64
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMemoryRecorder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewMemoryRecorder()
	_, err := r.Record(ctx, entry(model.EntityFinding, "f-1", model.ActionCreated))
	require.ErrorIs(t, err, context.Canceled)

	entries, err := r.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFailWhen(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	inner := NewMemoryRecorder()

	r := Chain(inner, Logged, FailWhen(func(entries []model.ActivityLogEntry) error {
		for _, e := range entries {
			if e.Action == model.ActionDeleted {
				return boom
			}
		}
		return nil
	}))

	_, err := r.Record(ctx,
		entry(model.EntityFinding, "f-1", model.ActionUpdated),
		entry(model.EntityFinding, "f-2", model.ActionDeleted),
	)
	require.ErrorIs(t, err, boom)

	_, err = r.Record(ctx, entry(model.EntityFinding, "f-1", model.ActionUpdated))
	require.NoError(t, err)

	entries, err := r.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f-1", entries[0].EntityID)
}

func TestChain_Order(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return FailWhen(func([]model.ActivityLogEntry) error {
			calls = append(calls, name)
			return nil
		})
	}

	r := Chain(NewMemoryRecorder(), mark("outer"), nil, mark("inner"))
	_, err := r.Record(context.Background(), entry(model.EntityAsset, "a", model.ActionCreated))
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}
