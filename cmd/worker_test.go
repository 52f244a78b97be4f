package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/internal/config"
	"github.com/anchore/riskboard/riskboard/importer"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/presenter"
	"github.com/anchore/riskboard/riskboard/risk"
	"github.com/anchore/riskboard/riskboard/store"
	"github.com/anchore/riskboard/riskboard/store/sqlstore"
	"github.com/anchore/riskboard/riskboard/ticket"
)

func testConfig(t *testing.T, backend string) *config.Application {
	t.Helper()
	cfg := &config.Application{}
	cfg.DB.Backend = backend
	cfg.DB.Path = filepath.Join(t.TempDir(), "riskboard.db")
	return cfg
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantSQL bool
	}{
		{name: "memory", backend: config.MemoryBackend},
		{name: "sqlite", backend: config.SQLiteBackend, wantSQL: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.backend)
			s, err := openStore(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			_, isSQL := s.(*sqlstore.Store)
			assert.Equal(t, tt.wantSQL, isSQL)

			f, err := s.CreateFinding(store.WithActor(context.Background(), "tester"), model.NewFinding{
				Title:    "weak cipher",
				Severity: model.SeverityHigh,
			})
			require.NoError(t, err)
			assert.Equal(t, risk.Score(risk.Input{Severity: model.SeverityHigh}), f.RiskScore)

			entries, err := s.ListActivity(context.Background(), store.ActivityFilter{EntityID: f.ID})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "tester", entries[0].Actor)
		})
	}
}

func TestOpenStore_CriticalityMultipliers(t *testing.T) {
	cfg := testConfig(t, config.MemoryBackend)
	cfg.Risk.CriticalityMultipliers = map[string]float64{"high": 2}

	s, err := openStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	a, err := s.CreateAsset(ctx, model.NewAsset{Name: "web", Category: model.AssetCategoryServer, Criticality: model.CriticalityHigh})
	require.NoError(t, err)

	f, err := s.CreateFinding(ctx, model.NewFinding{Title: "xss", Severity: model.SeverityMedium, AssetID: &a.ID})
	require.NoError(t, err)
	// medium (20) on a high criticality asset with the configured 2x multiplier
	assert.Equal(t, 40, f.RiskScore)
}

func TestOutcomePresenter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outcomePresenter(presenter.TableFormat, nil, "updated %d of %d findings", 2, 3).Present(&buf))
	assert.Equal(t, "updated 2 of 3 findings\n", buf.String())

	buf.Reset()
	require.NoError(t, outcomePresenter(presenter.JSONFormat, map[string]int{"updated": 2}, "ignored").Present(&buf))
	assert.JSONEq(t, `{"updated": 2}`, buf.String())
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "scan.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("title,severity\nA,high\nB,bogus\n"), 0600))
	jsonPath := filepath.Join(dir, "scan.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"title":"C","severity":"low"}]`), 0600))

	s, err := openStore(testConfig(t, config.MemoryBackend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	imp := importer.New(s)

	res, err := importFile(ctx, imp, csvPath)
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Rows: 2, Created: 2}, res)

	res, err = importFile(ctx, imp, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Rows: 1, Created: 1}, res)

	_, err = importFile(ctx, imp, filepath.Join(dir, "missing.csv"))
	require.Error(t, err)

	page, err := s.ListFindings(ctx, store.FindingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestTicketCreator_ContinuesNumbering(t *testing.T) {
	orig := appConfig
	t.Cleanup(func() { appConfig = orig })
	appConfig = testConfig(t, config.MemoryBackend)

	s, err := openStore(appConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	f, err := s.CreateFinding(ctx, model.NewFinding{Title: "a", Severity: model.SeverityLow})
	require.NoError(t, err)
	_, err = s.AttachTicket(ctx, f.ID, model.Ticket{Key: "SEC-1", Status: "open"})
	require.NoError(t, err)

	creator, err := ticketCreator(ctx, s)
	require.NoError(t, err)

	tk, err := creator.Create(ctx, model.Finding{})
	require.NoError(t, err)
	assert.Equal(t, "SEC-2", tk.Key)
}

func TestTicketCreator_SkipsKeysOfDeletedFindings(t *testing.T) {
	orig := appConfig
	t.Cleanup(func() { appConfig = orig })
	appConfig = testConfig(t, config.SQLiteBackend)

	s, err := openStore(appConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	a, err := s.CreateFinding(ctx, model.NewFinding{Title: "a", Severity: model.SeverityLow})
	require.NoError(t, err)
	b, err := s.CreateFinding(ctx, model.NewFinding{Title: "b", Severity: model.SeverityLow})
	require.NoError(t, err)

	for _, id := range []string{a.ID, b.ID} {
		creator, err := ticketCreator(ctx, s)
		require.NoError(t, err)
		_, err = ticket.Open(ctx, s, creator, id)
		require.NoError(t, err)
	}

	// b holds SEC-2; deleting a must not free SEC-1 or SEC-2 for reuse
	deleted, err := s.DeleteFinding(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	c, err := s.CreateFinding(ctx, model.NewFinding{Title: "c", Severity: model.SeverityLow})
	require.NoError(t, err)
	creator, err := ticketCreator(ctx, s)
	require.NoError(t, err)
	got, err := ticket.Open(ctx, s, creator, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "SEC-3", got.TicketKey)
}

func TestOpenStore_Reset(t *testing.T) {
	cfg := testConfig(t, config.SQLiteBackend)
	ctx := context.Background()

	s, err := openStore(cfg)
	require.NoError(t, err)
	_, err = s.CreateFinding(ctx, model.NewFinding{Title: "previous import", Severity: model.SeverityLow})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cfg.DB.Reset = true
	s, err = openStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	page, err := s.ListFindings(ctx, store.FindingFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
