package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
	"github.com/anchore/riskboard/riskboard/store/memory"
	"github.com/anchore/riskboard/riskboard/store/storetest"
)

func TestAgeBucket(t *testing.T) {
	tests := []struct {
		days int
		want AgeBucket
	}{
		{days: 0, want: AgeUpToWeek},
		{days: 7, want: AgeUpToWeek},
		{days: 8, want: AgeUpToMonth},
		{days: 30, want: AgeUpToMonth},
		{days: 31, want: AgeUpToQuarter},
		{days: 90, want: AgeUpToQuarter},
		{days: 91, want: AgeOlder},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ageBucket(tt.days), "days=%d", tt.days)
	}
}

func TestAggregator_Summarize(t *testing.T) {
	ctx := context.Background()
	clock := storetest.NewClock()
	s := memory.New(store.WithClock(clock.Now))

	create := func(title string, sev model.Severity) model.Finding {
		return storetest.MustCreate(t, s, model.NewFinding{Title: title, Severity: sev})
	}

	old := create("old", model.SeverityCritical)
	clock.Advance(60 * 24 * time.Hour)
	overdue := storetest.MustCreate(t, s, model.NewFinding{
		Title:    "overdue",
		Severity: model.SeverityHigh,
		DueDate:  ptr(storetest.Epoch),
	})
	inProgress := create("in progress", model.SeverityHigh)
	resolved := create("resolved", model.SeverityCritical)
	accepted := create("accepted", model.SeverityLow)

	update := func(id string, p store.FindingPatch) {
		_, err := s.UpdateFinding(ctx, id, p)
		require.NoError(t, err)
	}
	update(inProgress.ID, store.FindingPatch{Status: ptr(model.StatusInProgress)})
	update(resolved.ID, store.FindingPatch{Status: ptr(model.StatusResolved)})
	update(accepted.ID, store.FindingPatch{Status: ptr(model.StatusAccepted)})
	_, err := s.AttachTicket(ctx, old.ID, model.Ticket{Key: "SEC-1"})
	require.NoError(t, err)
	_ = overdue

	clock.Advance(24 * time.Hour)
	summary, err := NewAggregator(s, clock.Now).Summarize(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.Open)
	assert.Equal(t, 1, summary.InProgress)
	assert.Equal(t, 1, summary.ResolvedLast7Days)
	assert.Equal(t, 1, summary.WithTicket)
	assert.Equal(t, 1, summary.Overdue)

	wantSeverity := map[model.Severity]int{
		model.SeverityCritical: 1,
		model.SeverityHigh:     2,
		model.SeverityMedium:   0,
		model.SeverityLow:      0,
		model.SeverityInfo:     0,
	}
	if d := cmp.Diff(wantSeverity, summary.BySeverity); d != "" {
		t.Errorf("unexpected severity counts (-want +got):\n%s", d)
	}

	wantAges := map[AgeBucket]int{
		AgeUpToWeek:    2,
		AgeUpToMonth:   0,
		AgeUpToQuarter: 1,
		AgeOlder:       0,
	}
	if d := cmp.Diff(wantAges, summary.AgeBuckets); d != "" {
		t.Errorf("unexpected age buckets (-want +got):\n%s", d)
	}

	assert.Equal(t, 1, summary.ByStatus[model.StatusResolved])
	assert.Equal(t, 1, summary.ByStatus[model.StatusAccepted])
	assert.Equal(t, 0, summary.ByStatus[model.StatusFalsePositive])
}

func TestAggregator_ResolvedWindow(t *testing.T) {
	ctx := context.Background()
	clock := storetest.NewClock()
	s := memory.New(store.WithClock(clock.Now))

	f := storetest.MustCreate(t, s, model.NewFinding{Title: "fixed long ago", Severity: model.SeverityLow})
	_, err := s.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: ptr(model.StatusResolved)})
	require.NoError(t, err)

	clock.Advance(8 * 24 * time.Hour)
	summary, err := NewAggregator(s, clock.Now).Summarize(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.ResolvedLast7Days)
	assert.Zero(t, summary.Open)
	assert.Equal(t, 1, summary.Total)
}

type recordingReader struct {
	store.FindingStoreReader
	filters []store.FindingFilter
}

func (r *recordingReader) ListFindings(ctx context.Context, f store.FindingFilter) (*store.FindingPage, error) {
	r.filters = append(r.filters, f)
	return r.FindingStoreReader.ListFindings(ctx, f)
}

func TestAggregator_ReadsEverythingOnce(t *testing.T) {
	s := memory.New()
	var nfs []model.NewFinding
	for i := 0; i < store.MaxPageSize+3; i++ {
		nfs = append(nfs, model.NewFinding{Title: "bulk", Severity: model.SeverityInfo})
	}
	count, err := s.ImportFindings(context.Background(), nfs)
	require.NoError(t, err)
	require.Equal(t, store.MaxPageSize+3, count)

	reader := &recordingReader{FindingStoreReader: s}
	summary, err := NewAggregator(reader, nil).Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.MaxPageSize+3, summary.Total)
	assert.Equal(t, store.MaxPageSize+3, summary.BySeverity[model.SeverityInfo])
	assert.Equal(t, []store.FindingFilter{{}}, reader.filters)
}

type failingReader struct {
	store.FindingStoreReader
}

func (failingReader) ListFindings(context.Context, store.FindingFilter) (*store.FindingPage, error) {
	return nil, errors.New("unavailable")
}

func TestAggregator_PropagatesErrors(t *testing.T) {
	_, err := NewAggregator(failingReader{}, nil).Summarize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestSummary_Flatten(t *testing.T) {
	s := newSummary()
	s.Total = 3
	s.Open = 2
	s.BySeverity[model.SeverityHigh] = 2
	s.ByStatus[model.StatusOpen] = 2
	s.AgeBuckets[AgeOlder] = 1

	flat := s.Flatten()
	assert.Equal(t, 3, flat["total"])
	assert.Equal(t, 2, flat["open"])
	assert.Equal(t, 2, flat["severity_high"])
	assert.Equal(t, 0, flat["severity_critical"])
	assert.Equal(t, 2, flat["status_open"])
	assert.Equal(t, 1, flat["age_90d+"])
	assert.Contains(t, flat, "overdue")
}

func ptr[T any](v T) *T {
	return &v
}
