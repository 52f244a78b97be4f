package activity

import (
	"context"

	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/model"
)

// Logged traces every recorded entry.
func Logged(next Recorder) Recorder {
	return &loggingRecorder{next: next}
}

type loggingRecorder struct {
	next Recorder
}

func (l *loggingRecorder) Record(ctx context.Context, entries ...model.ActivityLogEntry) ([]model.ActivityLogEntry, error) {
	out, err := l.next.Record(ctx, entries...)
	if err != nil {
		log.WithFields("entries", len(entries), "error", err).Warn("unable to record activity")
		return nil, err
	}
	for _, e := range out {
		log.WithFields("entity", e.EntityType, "id", e.EntityID, "action", e.Action, "actor", e.Actor).Trace("activity recorded")
	}
	return out, nil
}

func (l *loggingRecorder) List(ctx context.Context, f Filter) ([]model.ActivityLogEntry, error) {
	return l.next.List(ctx, f)
}

// FailWhen makes Record fail with the error returned by fn whenever it is non-nil, without writing anything.
func FailWhen(fn func(entries []model.ActivityLogEntry) error) Middleware {
	return func(next Recorder) Recorder {
		return &failingRecorder{next: next, fn: fn}
	}
}

type failingRecorder struct {
	next Recorder
	fn   func([]model.ActivityLogEntry) error
}

func (f *failingRecorder) Record(ctx context.Context, entries ...model.ActivityLogEntry) ([]model.ActivityLogEntry, error) {
	if err := f.fn(entries); err != nil {
		return nil, err
	}
	return f.next.Record(ctx, entries...)
}

func (f *failingRecorder) List(ctx context.Context, filter Filter) ([]model.ActivityLogEntry, error) {
	return f.next.List(ctx, filter)
}
