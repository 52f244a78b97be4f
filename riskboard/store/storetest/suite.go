/*
Package storetest is the behavioral contract every store.Store backend must satisfy. Backends call Run from their own
tests with a factory for fresh, empty stores.
*/
package storetest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/activity"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/normalize"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/store"
)

// Factory returns a new, empty store configured with the given options. The factory owns cleanup (t.Cleanup).
type Factory func(t *testing.T, opts ...store.Option) store.Store

type suite struct {
	factory Factory
}

func (s suite) new(t *testing.T, opts ...store.Option) (store.Store, *Clock) {
	t.Helper()
	clock := NewClock()
	opts = append([]store.Option{store.WithClock(clock.Now)}, opts...)
	return s.factory(t, opts...), clock
}

// Run exercises the full store contract against the backend.
func Run(t *testing.T, factory Factory) {
	s := suite{factory: factory}

	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{name: "create and get", fn: s.testCreateAndGet},
		{name: "create validation", fn: s.testCreateValidation},
		{name: "asset criticality multiplier", fn: s.testCriticalityMultiplier},
		{name: "resolved at", fn: s.testResolvedAt},
		{name: "rescore", fn: s.testRescore},
		{name: "list ordering", fn: s.testListOrdering},
		{name: "pagination", fn: s.testPagination},
		{name: "filters", fn: s.testFilters},
		{name: "bulk update", fn: s.testBulkUpdate},
		{name: "import never drops rows", fn: s.testImportNeverDropsRows},
		{name: "import scoring", fn: s.testImportScoring},
		{name: "delete", fn: s.testDelete},
		{name: "attach ticket", fn: s.testAttachTicket},
		{name: "audit failure rolls back", fn: s.testAuditFailureRollsBack},
		{name: "assets", fn: s.testAssets},
		{name: "activity", fn: s.testActivity},
		{name: "records are not shared with callers", fn: s.testRecordsAreNotShared},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.fn)
	}
}

func (s suite) testCreateAndGet(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()

	created := MustCreate(t, st, model.NewFinding{
		Title:    "SQL injection in login form",
		CVE:      "CVE-2024-0001",
		Severity: model.SeverityHigh,
	})
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusOpen, created.Status)
	assert.Equal(t, 30, created.RiskScore)
	assert.Equal(t, "manual", created.Source)
	assert.Nil(t, created.ResolvedAt)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := st.GetFinding(ctx, created.ID)
	require.NoError(t, err)
	AssertFindingEqual(t, created, *got)

	_, err = st.GetFinding(ctx, "does-not-exist")
	assert.True(t, rberr.IsNotFound(err), "expected not found, got %v", err)

	assert.Equal(t, []model.Action{model.ActionCreated}, Actions(MustActivity(t, st, model.EntityFinding, created.ID)))
}

func (s suite) testCreateValidation(t *testing.T) {
	st, _ := s.new(t)
	blank := "  "
	bad := 11.0

	tests := []struct {
		name      string
		nf        model.NewFinding
		wantField string
	}{
		{name: "missing title", nf: model.NewFinding{Severity: model.SeverityLow}, wantField: "title"},
		{name: "unknown severity", nf: model.NewFinding{Title: "x", Severity: "urgent"}, wantField: "severity"},
		{name: "blank asset id", nf: model.NewFinding{Title: "x", Severity: model.SeverityLow, AssetID: &blank}, wantField: "asset_id"},
		{name: "cvss out of range", nf: model.NewFinding{Title: "x", Severity: model.SeverityLow, CVSSScore: &bad}, wantField: "cvss_score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.CreateFinding(context.Background(), tt.nf)
			var v *rberr.ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tt.wantField, v.Field)
		})
	}

	assert.Zero(t, MustList(t, st, store.FindingFilter{}).Total)
	entries, err := st.ListActivity(context.Background(), store.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func (s suite) testCriticalityMultiplier(t *testing.T) {
	st, _ := s.new(t)

	critical := MustCreateAsset(t, st, "payments-db", model.CriticalityCritical)
	low := MustCreateAsset(t, st, "kiosk", model.CriticalityLow)
	dangling := "no-such-asset"

	tests := []struct {
		name    string
		assetID *string
		want    int
	}{
		{name: "no asset", want: 30},
		{name: "critical asset", assetID: &critical.ID, want: 45},
		// 30 * 0.75 = 22.5, rounded away from zero
		{name: "low asset", assetID: &low.ID, want: 23},
		{name: "dangling asset reference", assetID: &dangling, want: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := MustCreate(t, st, model.NewFinding{Title: tt.name, Severity: model.SeverityHigh, AssetID: tt.assetID})
			assert.Equal(t, tt.want, f.RiskScore)
		})
	}
}

func (s suite) testResolvedAt(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()
	resolved, open := model.StatusResolved, model.StatusOpen

	f := MustCreate(t, st, model.NewFinding{Title: "XSS", Severity: model.SeverityMedium})

	got, err := st.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, got.ResolvedAt.Equal(got.UpdatedAt))
	assert.True(t, got.UpdatedAt.After(f.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(f.CreatedAt))
	resolvedAt := *got.ResolvedAt

	// reopening keeps the last resolution time...
	got, err = st.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: &open})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, got.Status)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, got.ResolvedAt.Equal(resolvedAt))

	// ...unless asked to clear it
	_, err = st.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: &resolved})
	require.NoError(t, err)
	got, err = st.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: &open, ClearResolvedAt: true})
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt)

	persisted, err := st.GetFinding(ctx, f.ID)
	require.NoError(t, err)
	AssertFindingEqual(t, *got, *persisted)

	_, err = st.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: &resolved, ClearResolvedAt: true})
	assert.True(t, rberr.IsValidation(err))

	_, err = st.UpdateFinding(ctx, "does-not-exist", store.FindingPatch{Status: &resolved})
	assert.True(t, rberr.IsNotFound(err))
}

func (s suite) testRescore(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()
	critical := model.SeverityCritical

	f := MustCreate(t, st, model.NewFinding{Title: "weak cipher", Severity: model.SeverityMedium})
	require.Equal(t, 20, f.RiskScore)

	got, err := st.UpdateFinding(ctx, f.ID, store.FindingPatch{Severity: &critical})
	require.NoError(t, err)
	assert.Equal(t, model.SeverityCritical, got.Severity)
	assert.Equal(t, 20, got.RiskScore, "plain updates must not rescore")

	got, err = st.UpdateFinding(ctx, f.ID, store.FindingPatch{Rescore: true})
	require.NoError(t, err)
	assert.Equal(t, 40, got.RiskScore)

	low := model.SeverityLow
	got, err = st.UpdateFinding(ctx, f.ID, store.FindingPatch{Severity: &low, Rescore: true})
	require.NoError(t, err)
	assert.Equal(t, 10, got.RiskScore)

	// one entry per mutation, with the score change folded in
	entries := MustActivity(t, st, model.EntityFinding, f.ID)
	assert.Equal(t,
		[]model.Action{model.ActionUpdated, model.ActionRescored, model.ActionUpdated, model.ActionCreated},
		Actions(entries),
	)
	assert.Equal(t, "risk_score 20 -> 40", entries[1].Details)
	assert.Equal(t, "changed: severity; risk_score 40 -> 10", entries[0].Details)

	count, err := st.BulkUpdateFindings(ctx, []string{f.ID}, store.FindingPatch{Severity: &critical, Rescore: true})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries = MustActivity(t, st, model.EntityFinding, f.ID)
	require.Len(t, entries, 5)
	assert.Equal(t, model.ActionBulkUpdated, entries[0].Action)
	assert.Equal(t, "changed: severity; risk_score 10 -> 40", entries[0].Details)
}

func (s suite) testListOrdering(t *testing.T) {
	st, _ := s.new(t)

	a := MustCreate(t, st, model.NewFinding{Title: "a", Severity: model.SeverityCritical})
	b := MustCreate(t, st, model.NewFinding{Title: "b", Severity: model.SeverityCritical, ExploitAvailable: true})
	c := MustCreate(t, st, model.NewFinding{Title: "c", Severity: model.SeverityHigh, ExploitAvailable: true})
	d := MustCreate(t, st, model.NewFinding{Title: "d", Severity: model.SeverityCritical})
	e := MustCreate(t, st, model.NewFinding{Title: "e", Severity: model.SeverityLow})

	require.Equal(t, []int{40, 65, 55, 40, 10}, []int{a.RiskScore, b.RiskScore, c.RiskScore, d.RiskScore, e.RiskScore})

	page := MustList(t, st, store.FindingFilter{Severity: model.SeverityCritical})
	assert.Equal(t, int64(3), page.Total)
	// equal scores: the newer finding first
	assert.Equal(t, []string{b.ID, d.ID, a.ID}, IDs(page.Items))

	page = MustList(t, st, store.FindingFilter{})
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, []string{b.ID, c.ID, d.ID, a.ID, e.ID}, IDs(page.Items))
}

func (s suite) testPagination(t *testing.T) {
	st, _ := s.new(t)

	var created []model.Finding
	for i := 0; i < 7; i++ {
		created = append(created, MustCreate(t, st, model.NewFinding{Title: "low", Severity: model.SeverityLow}))
	}
	// all scores are equal, so priority order is newest first
	var want []string
	for i := len(created) - 1; i >= 0; i-- {
		want = append(want, created[i].ID)
	}

	tests := []struct {
		name   string
		filter store.FindingFilter
		want   []string
	}{
		{name: "first page", filter: store.FindingFilter{Page: 1, PageSize: 3}, want: want[0:3]},
		{name: "middle page", filter: store.FindingFilter{Page: 2, PageSize: 3}, want: want[3:6]},
		{name: "last partial page", filter: store.FindingFilter{Page: 3, PageSize: 3}, want: want[6:7]},
		{name: "past the end", filter: store.FindingFilter{Page: 4, PageSize: 3}, want: nil},
		{name: "default page size", filter: store.FindingFilter{Page: 1}, want: want},
		{name: "top n", filter: store.FindingFilter{Limit: 2}, want: want[0:2]},
		{name: "limit beyond total", filter: store.FindingFilter{Limit: 100}, want: want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := MustList(t, st, tt.filter)
			assert.Equal(t, int64(7), page.Total)
			if len(tt.want) == 0 {
				assert.Empty(t, page.Items)
				return
			}
			assert.Equal(t, tt.want, IDs(page.Items))
		})
	}

	_, err := st.ListFindings(context.Background(), store.FindingFilter{Limit: 2, Page: 1})
	assert.True(t, rberr.IsValidation(err))
}

func (s suite) testFilters(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()
	inProgress := model.StatusInProgress
	alice := "alice"

	heap := MustCreate(t, st, model.NewFinding{Title: "OpenSSL heap overflow", Severity: model.SeverityCritical, Assignee: alice})
	xss := MustCreate(t, st, model.NewFinding{Title: "Reflected XSS", Severity: model.SeverityMedium})
	pct := MustCreate(t, st, model.NewFinding{Title: "100% CPU on malformed input", Severity: model.SeverityLow})
	echec := MustCreate(t, st, model.NewFinding{Title: "ÉCHEC de validation du certificat", Severity: model.SeverityLow})

	_, err := st.UpdateFinding(ctx, xss.ID, store.FindingPatch{Status: &inProgress})
	require.NoError(t, err)
	_, err = st.AttachTicket(ctx, heap.ID, model.Ticket{Key: "SEC-1", Status: "open"})
	require.NoError(t, err)

	yes, no := true, false
	tests := []struct {
		name   string
		filter store.FindingFilter
		want   []string
	}{
		{name: "search is case insensitive", filter: store.FindingFilter{Search: "HEAP"}, want: []string{heap.ID}},
		{name: "search treats wildcards literally", filter: store.FindingFilter{Search: "100%"}, want: []string{pct.ID}},
		{name: "search underscore is literal", filter: store.FindingFilter{Search: "_"}},
		{name: "search folds non-ascii case", filter: store.FindingFilter{Search: "échec"}, want: []string{echec.ID}},
		{name: "search folds non-ascii query", filter: store.FindingFilter{Search: "ÉCHEC DE"}, want: []string{echec.ID}},
		{name: "status", filter: store.FindingFilter{Status: model.StatusInProgress}, want: []string{xss.ID}},
		{name: "assignee", filter: store.FindingFilter{Assignee: alice}, want: []string{heap.ID}},
		{name: "with ticket", filter: store.FindingFilter{HasTicket: &yes}, want: []string{heap.ID}},
		{name: "without ticket", filter: store.FindingFilter{HasTicket: &no}, want: []string{xss.ID, echec.ID, pct.ID}},
		{
			name:   "predicates combine",
			filter: store.FindingFilter{Severity: model.SeverityCritical, HasTicket: &no},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := MustList(t, st, tt.filter)
			assert.Equal(t, int64(len(tt.want)), page.Total)
			if len(tt.want) == 0 {
				assert.Empty(t, page.Items)
				return
			}
			assert.Equal(t, tt.want, IDs(page.Items))
		})
	}
}

func (s suite) testBulkUpdate(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()
	inProgress := model.StatusInProgress
	alice := "alice"

	f1 := MustCreate(t, st, model.NewFinding{Title: "one", Severity: model.SeverityHigh})
	f2 := MustCreate(t, st, model.NewFinding{Title: "two", Severity: model.SeverityHigh})
	f3 := MustCreate(t, st, model.NewFinding{Title: "three", Severity: model.SeverityHigh})

	count, err := st.BulkUpdateFindings(ctx, []string{f1.ID, f2.ID, "missing", f1.ID}, store.FindingPatch{
		Status:   &inProgress,
		Assignee: &alice,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, id := range []string{f1.ID, f2.ID} {
		got, err := st.GetFinding(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, got.Status)
		assert.Equal(t, alice, got.Assignee)
		assert.Equal(t, []model.Action{model.ActionBulkUpdated, model.ActionCreated}, Actions(MustActivity(t, st, model.EntityFinding, id)))
	}

	untouched, err := st.GetFinding(ctx, f3.ID)
	require.NoError(t, err)
	AssertFindingEqual(t, f3, *untouched)

	count, err = st.BulkUpdateFindings(ctx, []string{"missing"}, store.FindingPatch{Assignee: &alice})
	require.NoError(t, err)
	assert.Zero(t, count)

	bad := model.Status("done")
	_, err = st.BulkUpdateFindings(ctx, []string{f1.ID}, store.FindingPatch{Status: &bad})
	assert.True(t, rberr.IsValidation(err))
}

func (s suite) testImportNeverDropsRows(t *testing.T) {
	st, _ := s.new(t)

	rows := []normalize.Row{
		{"title": "row 1", "severity": "high"},
		{"Title": "row 2", "Severity": "LOW"},
		{"name": "row 3", "severity": "critical", "exploitable": "TRUE"},
		{"vulnerability": "row 4"},
		{"title": "row 5", "cvss_score": "7.5"},
		{"title": "row 6", "cvss_score": "not-a-number"},
		{"title": "row 7", "severity": "catastrophic"},
		{"title": "row 8", "detected_at": "yesterday-ish"},
		{"title": "row 9", "asset_id": "unknown-asset"},
		// malformed: nothing recognizable at all
		{"": "", "???": "\x00"},
		{"title": "row 11", "due_date": "2024-07-01"},
	}

	count, err := st.ImportFindings(context.Background(), normalize.Findings(rows))
	require.NoError(t, err)
	assert.Equal(t, 11, count)

	page := MustList(t, st, store.FindingFilter{})
	assert.Equal(t, int64(11), page.Total)

	untitled := MustList(t, st, store.FindingFilter{Search: normalize.UntitledFinding})
	assert.Equal(t, int64(1), untitled.Total)
	assert.Equal(t, model.SeverityMedium, untitled.Items[0].Severity)
	assert.Equal(t, normalize.DefaultSource, untitled.Items[0].Source)

	entries, err := st.ListActivity(context.Background(), store.ActivityFilter{EntityType: model.EntityFinding})
	require.NoError(t, err)
	assert.Len(t, entries, 11)
	for _, e := range entries {
		assert.Equal(t, model.ActionImported, e.Action)
	}
}

func (s suite) testImportScoring(t *testing.T) {
	st, _ := s.new(t)
	asset := MustCreateAsset(t, st, "edge-router", model.CriticalityCritical)

	rows := []normalize.Row{
		{"Title": "Log4Shell", "Severity": "CRITICAL", "Exploit_Available": "true"},
		{
			"title":             "old and exposed",
			"severity":          "high",
			"exploit_available": "true",
			"asset_id":          asset.ID,
			"detected_at":       Epoch.AddDate(0, 0, -95).Format("2006-01-02"),
		},
	}

	// a record that never went through the normalizer is still sanitized
	count, err := st.ImportFindings(context.Background(), append(normalize.Findings(rows), model.NewFinding{Severity: "bogus"}))
	require.NoError(t, err)
	require.Equal(t, 3, count)

	want := map[string]int{
		"Log4Shell":               65,
		"old and exposed":         100,
		normalize.UntitledFinding: 20,
	}
	page := MustList(t, st, store.FindingFilter{})
	require.Len(t, page.Items, 3)
	for _, f := range page.Items {
		assert.Equal(t, want[f.Title], f.RiskScore, f.Title)
	}
}

func (s suite) testDelete(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()

	f := MustCreate(t, st, model.NewFinding{Title: "stale", Severity: model.SeverityInfo})

	deleted, err := st.DeleteFinding(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = st.GetFinding(ctx, f.ID)
	assert.True(t, rberr.IsNotFound(err))

	deleted, err = st.DeleteFinding(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// the audit trail outlives the finding
	assert.Equal(t, []model.Action{model.ActionDeleted, model.ActionCreated}, Actions(MustActivity(t, st, model.EntityFinding, f.ID)))
}

func (s suite) testAttachTicket(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()

	f := MustCreate(t, st, model.NewFinding{Title: "open redirect", Severity: model.SeverityLow})
	got, err := st.AttachTicket(ctx, f.ID, model.Ticket{Key: "SEC-42", Status: "open", URL: "https://tickets.example.com/browse/SEC-42"})
	require.NoError(t, err)
	assert.Equal(t, "SEC-42", got.TicketKey)
	assert.Equal(t, "open", got.TicketStatus)
	assert.Equal(t, "https://tickets.example.com/browse/SEC-42", got.TicketURL)
	assert.True(t, got.HasTicket())

	persisted, err := st.GetFinding(ctx, f.ID)
	require.NoError(t, err)
	AssertFindingEqual(t, *got, *persisted)

	_, err = st.AttachTicket(ctx, f.ID, model.Ticket{})
	assert.True(t, rberr.IsValidation(err))

	_, err = st.AttachTicket(ctx, "missing", model.Ticket{Key: "SEC-43"})
	assert.True(t, rberr.IsNotFound(err))

	assert.Equal(t, []model.Action{model.ActionTicketAttached, model.ActionCreated}, Actions(MustActivity(t, st, model.EntityFinding, f.ID)))
}

func (s suite) testAuditFailureRollsBack(t *testing.T) {
	var failing atomic.Bool
	errAudit := errors.New("audit log unavailable")
	st, _ := s.new(t, store.WithActivityMiddleware(activity.FailWhen(func([]model.ActivityLogEntry) error {
		if failing.Load() {
			return errAudit
		}
		return nil
	})))
	ctx := context.Background()
	resolved := model.StatusResolved

	f := MustCreate(t, st, model.NewFinding{Title: "kept", Severity: model.SeverityHigh})
	MustCreateAsset(t, st, "host", model.CriticalityMedium)

	failing.Store(true)

	assertAuditErr := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		assert.True(t, rberr.IsAuditWrite(err), "expected audit write error, got %v", err)
		assert.ErrorIs(t, err, errAudit)
	}

	_, err := st.CreateFinding(ctx, model.NewFinding{Title: "lost", Severity: model.SeverityLow})
	assertAuditErr(t, err)

	_, err = st.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: &resolved})
	assertAuditErr(t, err)

	count, err := st.BulkUpdateFindings(ctx, []string{f.ID}, store.FindingPatch{Status: &resolved})
	assertAuditErr(t, err)
	assert.Zero(t, count)

	_, err = st.AttachTicket(ctx, f.ID, model.Ticket{Key: "SEC-1"})
	assertAuditErr(t, err)

	deleted, err := st.DeleteFinding(ctx, f.ID)
	assertAuditErr(t, err)
	assert.False(t, deleted)

	_, err = st.CreateAsset(ctx, model.NewAsset{Name: "lost", Category: model.AssetCategoryOther, Criticality: model.CriticalityLow})
	assertAuditErr(t, err)

	// a row that cannot be audited stops the import rather than being skipped
	count, err = st.ImportFindings(ctx, []model.NewFinding{
		{Title: "lost too", Severity: model.SeverityLow},
		{Title: "never reached", Severity: model.SeverityLow},
	})
	assertAuditErr(t, err)
	assert.Zero(t, count)

	failing.Store(false)

	got, err := st.GetFinding(ctx, f.ID)
	require.NoError(t, err)
	AssertFindingEqual(t, f, *got)

	page := MustList(t, st, store.FindingFilter{})
	assert.Equal(t, []string{f.ID}, IDs(page.Items))

	assets, err := st.ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 1)

	entries, err := st.ListActivity(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func (s suite) testAssets(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()

	_, err := st.CreateAsset(ctx, model.NewAsset{Name: "x", Category: "toaster", Criticality: model.CriticalityLow})
	assert.True(t, rberr.IsValidation(err))

	web := MustCreateAsset(t, st, "web-01", model.CriticalityHigh)
	api := MustCreateAsset(t, st, "api-01", model.CriticalityLow)

	assets, err := st.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, []string{api.ID, web.ID}, []string{assets[0].ID, assets[1].ID})

	critical := model.CriticalityCritical
	updated, err := st.UpdateAsset(ctx, web.ID, store.AssetPatch{Criticality: &critical})
	require.NoError(t, err)
	assert.Equal(t, model.CriticalityCritical, updated.Criticality)

	_, err = st.UpdateAsset(ctx, "missing", store.AssetPatch{Criticality: &critical})
	assert.True(t, rberr.IsNotFound(err))

	f := MustCreate(t, st, model.NewFinding{Title: "on web", Severity: model.SeverityHigh, AssetID: &web.ID})
	assert.Equal(t, 45, f.RiskScore)

	deleted, err := st.DeleteAsset(ctx, web.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = st.GetAsset(ctx, web.ID)
	assert.True(t, rberr.IsNotFound(err))

	// no cascade: the finding keeps its now dangling reference and its score
	got, err := st.GetFinding(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssetID)
	assert.Equal(t, web.ID, *got.AssetID)
	assert.Equal(t, 45, got.RiskScore)

	deleted, err = st.DeleteAsset(ctx, web.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t,
		[]model.Action{model.ActionDeleted, model.ActionUpdated, model.ActionCreated},
		Actions(MustActivity(t, st, model.EntityAsset, web.ID)),
	)
}

func (s suite) testActivity(t *testing.T) {
	st, clock := s.new(t)
	ctx := store.WithActor(context.Background(), "alice")

	f, err := st.CreateFinding(ctx, model.NewFinding{Title: "audited", Severity: model.SeverityLow})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = st.DeleteFinding(store.WithActor(context.Background(), "bob"), f.ID)
	require.NoError(t, err)

	entries, err := st.ListActivity(context.Background(), store.ActivityFilter{EntityID: f.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Actor)
	assert.Equal(t, "alice", entries[1].Actor)
	assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))
	assert.NotZero(t, entries[0].ID)

	entries, err = st.ListActivity(context.Background(), store.ActivityFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionDeleted, entries[0].Action)
}

func (s suite) testRecordsAreNotShared(t *testing.T) {
	st, _ := s.new(t)
	ctx := context.Background()

	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	score := 7.5
	f := MustCreate(t, st, model.NewFinding{Title: "shared", Severity: model.SeverityHigh, DueDate: &due, CVSSScore: &score})

	// the caller's payload pointers
	due = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	score = 1

	got, err := st.GetFinding(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, got.CVSSScore)
	assert.Equal(t, 7.5, *got.CVSSScore)

	// a returned record
	*got.DueDate = time.Time{}

	resolvedAt := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	resolved := model.StatusResolved
	updated, err := st.UpdateFinding(ctx, f.ID, store.FindingPatch{Status: &resolved, ResolvedAt: &resolvedAt})
	require.NoError(t, err)

	// the patch pointer and the record returned by the update
	resolvedAt = time.Time{}
	require.NotNil(t, updated.ResolvedAt)
	*updated.ResolvedAt = time.Time{}

	page := MustList(t, st, store.FindingFilter{})
	require.Len(t, page.Items, 1)
	*page.Items[0].CVSSScore = 0

	got, err = st.GetFinding(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, got.ResolvedAt.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 7.5, *got.CVSSScore)

	assert.Len(t, MustActivity(t, st, model.EntityFinding, f.ID), 2)
}
