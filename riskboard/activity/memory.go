package activity

import (
	"context"
	"sync"

	"github.com/anchore/riskboard/riskboard/model"
)

var _ Recorder = (*MemoryRecorder)(nil)

type MemoryRecorder struct {
	lock    sync.RWMutex
	nextID  int64
	entries []model.ActivityLogEntry
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{nextID: 1}
}

func (r *MemoryRecorder) Record(ctx context.Context, entries ...model.ActivityLogEntry) ([]model.ActivityLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]model.ActivityLogEntry, len(entries))
	for i, e := range entries {
		e.ID = r.nextID
		r.nextID++
		out[i] = e
	}
	r.entries = append(r.entries, out...)
	return out, nil
}

func (r *MemoryRecorder) List(ctx context.Context, f Filter) ([]model.ActivityLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	var out []model.ActivityLogEntry
	// entries are appended in id order, so walking backwards is newest first
	for i := len(r.entries) - 1; i >= 0; i-- {
		if !f.Matches(r.entries[i]) {
			continue
		}
		out = append(out, r.entries[i])
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
