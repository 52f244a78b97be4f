/*
Package activity is the append-only audit trail of every mutation made through the store. Entries are never updated or
deleted, and they outlive the entities they describe.
*/
package activity

import (
	"context"

	"github.com/anchore/riskboard/riskboard/model"
)

// Recorder appends audit entries. Record is all-or-nothing: either every entry is persisted (and returned with its
// assigned id) or none is.
type Recorder interface {
	Record(ctx context.Context, entries ...model.ActivityLogEntry) ([]model.ActivityLogEntry, error)
	List(ctx context.Context, f Filter) ([]model.ActivityLogEntry, error)
}

// Middleware decorates a recorder, for instance to log or to inject failures.
type Middleware func(Recorder) Recorder

// Chain applies the middleware in order, so that the first one is the outermost.
func Chain(r Recorder, mw ...Middleware) Recorder {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			r = mw[i](r)
		}
	}
	return r
}

// Filter selects activity log entries, newest first.
type Filter struct {
	EntityType model.EntityType `json:"entity_type,omitempty" form:"entity_type"`
	EntityID   string           `json:"entity_id,omitempty" form:"entity_id"`
	// Limit of 0 means no limit.
	Limit int `json:"limit,omitempty" form:"limit"`
}

func (f Filter) Matches(e model.ActivityLogEntry) bool {
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.EntityID != "" && e.EntityID != f.EntityID {
		return false
	}
	return true
}
