package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
)

func ptr[T any](v T) *T {
	return &v
}

func TestFindingPatch_Apply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		finding     model.Finding
		patch       FindingPatch
		wantChanged []string
		assertFn    func(t *testing.T, f model.Finding)
	}{
		{
			name:        "resolving sets resolved_at to now",
			finding:     model.Finding{Status: model.StatusOpen},
			patch:       FindingPatch{Status: ptr(model.StatusResolved)},
			wantChanged: []string{"resolved_at", "status"},
			assertFn: func(t *testing.T, f model.Finding) {
				require.NotNil(t, f.ResolvedAt)
				assert.Equal(t, now, *f.ResolvedAt)
			},
		},
		{
			name:        "resolving with an explicit time keeps it",
			finding:     model.Finding{Status: model.StatusOpen},
			patch:       FindingPatch{Status: ptr(model.StatusResolved), ResolvedAt: &earlier},
			wantChanged: []string{"resolved_at", "status"},
			assertFn: func(t *testing.T, f model.Finding) {
				require.NotNil(t, f.ResolvedAt)
				assert.Equal(t, earlier, *f.ResolvedAt)
			},
		},
		{
			name:        "reopening keeps resolved_at",
			finding:     model.Finding{Status: model.StatusResolved, ResolvedAt: &earlier},
			patch:       FindingPatch{Status: ptr(model.StatusOpen)},
			wantChanged: []string{"status"},
			assertFn: func(t *testing.T, f model.Finding) {
				require.NotNil(t, f.ResolvedAt)
				assert.Equal(t, earlier, *f.ResolvedAt)
			},
		},
		{
			name:        "reopening with clear drops resolved_at",
			finding:     model.Finding{Status: model.StatusResolved, ResolvedAt: &earlier},
			patch:       FindingPatch{Status: ptr(model.StatusOpen), ClearResolvedAt: true},
			wantChanged: []string{"resolved_at", "status"},
			assertFn: func(t *testing.T, f model.Finding) {
				assert.Nil(t, f.ResolvedAt)
			},
		},
		{
			name:        "unchanged values are not reported",
			finding:     model.Finding{Title: "same", Assignee: "alice"},
			patch:       FindingPatch{Title: ptr("same"), Assignee: ptr("bob")},
			wantChanged: []string{"assignee"},
		},
		{
			name:        "blank asset id clears the reference",
			finding:     model.Finding{AssetID: ptr("a-1")},
			patch:       FindingPatch{AssetID: ptr("")},
			wantChanged: []string{"asset_id"},
			assertFn: func(t *testing.T, f model.Finding) {
				assert.Nil(t, f.AssetID)
			},
		},
		{
			name:    "empty patch only touches updated_at",
			finding: model.Finding{Title: "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.finding
			f.CreatedAt = created
			changed, err := tt.patch.Apply(&f, now)
			require.NoError(t, err)
			if d := cmp.Diff(tt.wantChanged, changed); d != "" {
				t.Errorf("unexpected changed fields (-want +got):\n%s", d)
			}
			assert.Equal(t, now, f.UpdatedAt)
			assert.Equal(t, created, f.CreatedAt)
			if tt.assertFn != nil {
				tt.assertFn(t, f)
			}
		})
	}
}

func TestFindingPatch_Validate(t *testing.T) {
	ts := time.Now()
	tests := []struct {
		name      string
		patch     FindingPatch
		wantField string
	}{
		{name: "empty", patch: FindingPatch{}},
		{name: "blank title", patch: FindingPatch{Title: ptr("  ")}, wantField: "title"},
		{name: "bad severity", patch: FindingPatch{Severity: ptr(model.Severity("CRITICAL"))}, wantField: "severity"},
		{name: "bad status", patch: FindingPatch{Status: ptr(model.Status("done"))}, wantField: "status"},
		{name: "cvss out of range", patch: FindingPatch{CVSSScore: ptr(10.5)}, wantField: "cvss_score"},
		{
			name:      "clear while resolving",
			patch:     FindingPatch{Status: ptr(model.StatusResolved), ClearResolvedAt: true},
			wantField: "resolved_at",
		},
		{
			name:      "clear and set together",
			patch:     FindingPatch{ResolvedAt: &ts, ClearResolvedAt: true},
			wantField: "resolved_at",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var v *rberr.ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tt.wantField, v.Field)
		})
	}
}

func TestFindingPatch_IsEmpty(t *testing.T) {
	assert.True(t, FindingPatch{}.IsEmpty())
	assert.False(t, FindingPatch{Rescore: true}.IsEmpty())
	assert.False(t, FindingPatch{Assignee: ptr("")}.IsEmpty())
}

func TestAssetPatch_Apply(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := model.Asset{Name: "web-1", Category: model.AssetCategoryServer, Criticality: model.CriticalityLow}

	changed, err := AssetPatch{
		Criticality: ptr(model.CriticalityCritical),
		Name:        ptr("web-1"),
	}.Apply(&a, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"criticality"}, changed)
	assert.Equal(t, model.CriticalityCritical, a.Criticality)
	assert.Equal(t, now, a.UpdatedAt)

	_, err = AssetPatch{Category: ptr(model.AssetCategory("toaster"))}.Apply(&a, now)
	assert.True(t, rberr.IsValidation(err))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "no field changes", Describe(nil))
	assert.Equal(t, "changed: severity, status", Describe([]string{"severity", "status"}))
}

func TestFindingPatch_Apply_ResolvingAgainRestampsResolvedAt(t *testing.T) {
	earlier := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f := model.Finding{Status: model.StatusOpen, ResolvedAt: &earlier}

	_, err := FindingPatch{Status: ptr(model.StatusResolved)}.Apply(&f, now)
	require.NoError(t, err)
	require.NotNil(t, f.ResolvedAt)
	assert.Equal(t, now, *f.ResolvedAt)
}

func TestPatchActivity(t *testing.T) {
	tests := []struct {
		name        string
		action      model.Action
		changed     []string
		rescore     bool
		wantAction  model.Action
		wantDetails string
	}{
		{
			name:        "plain update",
			action:      model.ActionUpdated,
			changed:     []string{"status"},
			wantAction:  model.ActionUpdated,
			wantDetails: "changed: status",
		},
		{
			name:        "rescore only",
			action:      model.ActionUpdated,
			rescore:     true,
			wantAction:  model.ActionRescored,
			wantDetails: "risk_score 20 -> 40",
		},
		{
			name:        "update with rescore",
			action:      model.ActionUpdated,
			changed:     []string{"severity"},
			rescore:     true,
			wantAction:  model.ActionUpdated,
			wantDetails: "changed: severity; risk_score 20 -> 40",
		},
		{
			name:        "bulk rescore keeps the bulk action",
			action:      model.ActionBulkUpdated,
			rescore:     true,
			wantAction:  model.ActionBulkUpdated,
			wantDetails: "no field changes; risk_score 20 -> 40",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, details := PatchActivity(tt.action, tt.changed, tt.rescore, 20, 40)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantDetails, details)
		})
	}
}
