package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/normalize"
	"github.com/anchore/riskboard/riskboard/rberr"
)

func fixedOptions(now time.Time) Options {
	return NewOptions(
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "fixed-id" }),
	)
}

func TestValidateNewFinding(t *testing.T) {
	tests := []struct {
		name      string
		nf        model.NewFinding
		wantField string
	}{
		{name: "valid", nf: model.NewFinding{Title: "x", Severity: model.SeverityLow}},
		{name: "missing title", nf: model.NewFinding{Severity: model.SeverityLow}, wantField: "title"},
		{name: "missing severity", nf: model.NewFinding{Title: "x"}, wantField: "severity"},
		{name: "bad severity", nf: model.NewFinding{Title: "x", Severity: "bad"}, wantField: "severity"},
		{
			name:      "cvss out of range",
			nf:        model.NewFinding{Title: "x", Severity: model.SeverityLow, CVSSScore: ptr(-1.0)},
			wantField: "cvss_score",
		},
		{
			name:      "blank asset id",
			nf:        model.NewFinding{Title: "x", Severity: model.SeverityLow, AssetID: ptr(" ")},
			wantField: "asset_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewFinding(tt.nf)
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

func TestSanitizeImported(t *testing.T) {
	got := SanitizeImported(model.NewFinding{
		Severity:  "bogus",
		CVSSScore: ptr(42.0),
		AssetID:   ptr(""),
	})
	assert.Equal(t, normalize.UntitledFinding, got.Title)
	assert.Equal(t, model.SeverityMedium, got.Severity)
	assert.Equal(t, normalize.DefaultSource, got.Source)
	assert.Nil(t, got.CVSSScore)
	assert.Nil(t, got.AssetID)
}

func TestOptions_BuildFinding(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	opts := fixedOptions(now)
	detected := now.AddDate(0, 0, -95)
	crit := model.CriticalityCritical

	f := opts.BuildFinding(model.NewFinding{
		Title:            " Remote code execution ",
		Severity:         model.SeverityHigh,
		ExploitAvailable: true,
		DetectedAt:       &detected,
	}, &crit)

	assert.Equal(t, "fixed-id", f.ID)
	assert.Equal(t, "Remote code execution", f.Title)
	assert.Equal(t, model.StatusOpen, f.Status)
	assert.Equal(t, "manual", f.Source)
	assert.Equal(t, now, f.CreatedAt)
	assert.Equal(t, now, f.UpdatedAt)
	assert.NotEmpty(t, f.Fingerprint)
	// (30 + 25) * 1.5 + 20 = 102.5, clamped
	assert.Equal(t, 100, f.RiskScore)
}

func TestOptions_BuildAsset(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := fixedOptions(now).BuildAsset(model.NewAsset{
		Name:        "db-1",
		Category:    "cloud-resource",
		Criticality: model.CriticalityHigh,
	})
	assert.Equal(t, model.AssetCategoryCloudResource, a.Category)
	assert.Equal(t, "fixed-id", a.ID)

	assert.True(t, rberr.IsValidation(ValidateNewAsset(model.NewAsset{Name: "x", Category: "server"})))
	assert.True(t, rberr.IsValidation(ValidateNewAsset(model.NewAsset{Name: "x", Category: "toaster", Criticality: model.CriticalityLow})))
	assert.NoError(t, ValidateNewAsset(model.NewAsset{Name: "x", Category: "server", Criticality: model.CriticalityLow}))
}

func TestActor(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ActorFromContext(ctx))

	ctx = WithActor(ctx, "alice")
	assert.Equal(t, "alice", ActorFromContext(ctx))

	entry := fixedOptions(time.Now()).Activity(ctx, model.EntityFinding, "f-1", model.ActionDeleted, "")
	assert.Equal(t, "alice", entry.Actor)
	assert.Equal(t, model.ActionDeleted, entry.Action)
}

func TestTicketKeyFromDetails(t *testing.T) {
	key, ok := TicketKeyFromDetails(TicketDetails(model.Ticket{Key: "SEC-12", Status: "open"}))
	assert.True(t, ok)
	assert.Equal(t, "SEC-12", key)

	key, ok = TicketKeyFromDetails(TicketDetails(model.Ticket{Key: "SEC-3"}))
	assert.True(t, ok)
	assert.Equal(t, "SEC-3", key)

	_, ok = TicketKeyFromDetails("changed: status")
	assert.False(t, ok)
}
