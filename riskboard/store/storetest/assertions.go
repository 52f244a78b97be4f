package storetest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

// FindingCompareOptions ignore representation details a backend may change on a round trip. Times are already
// compared with time.Time.Equal, so the location a backend hands back does not matter.
func FindingCompareOptions() []cmp.Option {
	return []cmp.Option{
		cmpopts.EquateEmpty(),
	}
}

func AssertFindingEqual(t *testing.T, expected, actual model.Finding) {
	t.Helper()
	if d := cmp.Diff(expected, actual, FindingCompareOptions()...); d != "" {
		t.Errorf("finding mismatch (-want +got):\n%s", d)
	}
}

func IDs(findings []model.Finding) []string {
	ids := make([]string, len(findings))
	for i, f := range findings {
		ids[i] = f.ID
	}
	return ids
}

func Actions(entries []model.ActivityLogEntry) []model.Action {
	actions := make([]model.Action, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
	}
	return actions
}

// MustCreate creates a finding and fails the test on error.
func MustCreate(t *testing.T, s store.Store, nf model.NewFinding) model.Finding {
	t.Helper()
	f, err := s.CreateFinding(context.Background(), nf)
	require.NoError(t, err)
	require.NotNil(t, f)
	return *f
}

func MustCreateAsset(t *testing.T, s store.Store, name string, crit model.Criticality) model.Asset {
	t.Helper()
	a, err := s.CreateAsset(context.Background(), model.NewAsset{
		Name:        name,
		Category:    model.AssetCategoryServer,
		Criticality: crit,
	})
	require.NoError(t, err)
	require.NotNil(t, a)
	return *a
}

func MustList(t *testing.T, s store.Store, filter store.FindingFilter) *store.FindingPage {
	t.Helper()
	page, err := s.ListFindings(context.Background(), filter)
	require.NoError(t, err)
	require.NotNil(t, page)
	return page
}

func MustActivity(t *testing.T, s store.Store, entityType model.EntityType, id string) []model.ActivityLogEntry {
	t.Helper()
	entries, err := s.ListActivity(context.Background(), store.ActivityFilter{EntityType: entityType, EntityID: id})
	require.NoError(t, err)
	return entries
}
