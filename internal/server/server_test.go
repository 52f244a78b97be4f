package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
	"github.com/anchore/riskboard/riskboard/store/memory"
	"github.com/anchore/riskboard/riskboard/store/storetest"
	"github.com/anchore/riskboard/riskboard/ticket"
)

type fixture struct {
	t      *testing.T
	store  store.Store
	server *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := storetest.NewClock()
	s := memory.New(store.WithClock(clock.Now))
	t.Cleanup(func() { _ = s.Close() })

	return &fixture{
		t:      t,
		store:  s,
		server: New(Config{Address: "127.0.0.1:0", Clock: clock.Now}, s, ticket.NewStub(ticket.DefaultConfig())),
	}
}

func (f *fixture) do(method, target string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if _, ok := body.(string); !ok && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestServer_FindingLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/findings", model.NewFinding{
		Title:            "Log4Shell",
		CVE:              "CVE-2021-44228",
		Severity:         model.SeverityCritical,
		ExploitAvailable: true,
	}, ActorHeader, "alice")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Finding](t, rec)
	assert.Equal(t, 65, created.RiskScore)
	assert.Equal(t, model.StatusOpen, created.Status)

	rec = f.do(http.MethodGet, "/api/findings/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[model.Finding](t, rec).ID)

	resolved := model.StatusResolved
	rec = f.do(http.MethodPatch, "/api/findings/"+created.ID, store.FindingPatch{Status: &resolved})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Finding](t, rec)
	assert.Equal(t, model.StatusResolved, updated.Status)
	assert.NotNil(t, updated.ResolvedAt)

	rec = f.do(http.MethodPost, "/api/findings/"+created.ID+"/ticket", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ticketed := decode[model.Finding](t, rec)
	assert.Equal(t, "SEC-1", ticketed.TicketKey)
	assert.Equal(t, "https://tickets.example.com/browse/SEC-1", ticketed.TicketURL)

	rec = f.do(http.MethodGet, "/api/activity?entity_type=finding&entity_id="+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]model.ActivityLogEntry](t, rec)
	assert.Equal(t, []model.Action{model.ActionTicketAttached, model.ActionUpdated, model.ActionCreated}, storetest.Actions(entries))
	assert.Equal(t, "alice", entries[len(entries)-1].Actor)

	rec = f.do(http.MethodDelete, "/api/findings/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodDelete, "/api/findings/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/findings/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		method    string
		target    string
		body      interface{}
		wantCode  int
		wantField string
	}{
		{
			name:      "blank title",
			method:    http.MethodPost,
			target:    "/api/findings",
			body:      model.NewFinding{Title: " ", Severity: model.SeverityLow},
			wantCode:  http.StatusBadRequest,
			wantField: "title",
		},
		{
			name:      "malformed body",
			method:    http.MethodPost,
			target:    "/api/findings",
			body:      map[string]interface{}{"title": 42},
			wantCode:  http.StatusBadRequest,
			wantField: "body",
		},
		{
			name:      "bad filter",
			method:    http.MethodGet,
			target:    "/api/findings?severity=extreme",
			wantCode:  http.StatusBadRequest,
			wantField: "severity",
		},
		{
			name:      "unparseable query",
			method:    http.MethodGet,
			target:    "/api/findings?page=two",
			wantCode:  http.StatusBadRequest,
			wantField: "query",
		},
		{
			name:     "unknown finding",
			method:   http.MethodGet,
			target:   "/api/findings/missing",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "update unknown finding",
			method:   http.MethodPatch,
			target:   "/api/findings/missing",
			body:     store.FindingPatch{Rescore: true},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "ticket for unknown finding",
			method:   http.MethodPost,
			target:   "/api/findings/missing/ticket",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown asset",
			method:   http.MethodGet,
			target:   "/api/assets/missing",
			wantCode: http.StatusNotFound,
		},
		{
			name:      "negative activity limit",
			method:    http.MethodGet,
			target:    "/api/activity?limit=-1",
			wantCode:  http.StatusBadRequest,
			wantField: "limit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.target, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			resp := decode[errorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}

func TestServer_ListFindings(t *testing.T) {
	f := newFixture(t)
	storetest.MustCreate(t, f.store, model.NewFinding{Title: "low", Severity: model.SeverityLow})
	top := storetest.MustCreate(t, f.store, model.NewFinding{Title: "critical", Severity: model.SeverityCritical})
	storetest.MustCreate(t, f.store, model.NewFinding{Title: "medium", Severity: model.SeverityMedium})

	rec := f.do(http.MethodGet, "/api/findings?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[store.FindingPage](t, rec)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, []string{top.ID}, storetest.IDs(page.Items))

	rec = f.do(http.MethodGet, "/api/findings?severity=low&search=LO", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[store.FindingPage](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "low", page.Items[0].Title)

	rec = f.do(http.MethodGet, "/api/findings?severity=high", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, rec.Body.String())
}

func TestServer_BulkUpdate(t *testing.T) {
	f := newFixture(t)
	a := storetest.MustCreate(t, f.store, model.NewFinding{Title: "a", Severity: model.SeverityLow})
	b := storetest.MustCreate(t, f.store, model.NewFinding{Title: "b", Severity: model.SeverityLow})

	assignee := "bob"
	rec := f.do(http.MethodPatch, "/api/findings/bulk", bulkUpdateRequest{
		IDs:   []string{a.ID, b.ID, "missing"},
		Patch: store.FindingPatch{Assignee: &assignee},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[bulkUpdateResponse](t, rec).Updated)

	got, err := f.store.GetFinding(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Assignee)
}

func TestServer_Import(t *testing.T) {
	f := newFixture(t)

	csv := strings.Join([]string{
		"title,severity,exploit_available,cvss",
		"Remote code execution,CRITICAL,true,9.8",
		",,,",
		"Weak cipher,low,false,nope",
	}, "\n")
	rec := f.do(http.MethodPost, "/api/findings/import", csv, "Content-Type", "text/csv")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, importResponse{Rows: 2, Created: 2, Skipped: 0}, decode[importResponse](t, rec))

	rec = f.do(http.MethodPost, "/api/findings/import", []model.NewFinding{
		{Title: "from json", Severity: model.SeverityHigh},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, importResponse{Rows: 1, Created: 1}, decode[importResponse](t, rec))

	page := storetest.MustList(t, f.store, store.FindingFilter{})
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Remote code execution", page.Items[0].Title)
	assert.Equal(t, 65, page.Items[0].RiskScore)
}

func TestServer_Assets(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/assets", model.NewAsset{
		Name:        "db-1",
		Category:    model.AssetCategoryDatabase,
		Criticality: model.CriticalityHigh,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asset := decode[model.Asset](t, rec)

	rec = f.do(http.MethodPost, "/api/assets", model.NewAsset{Name: "bad", Category: "spaceship", Criticality: model.CriticalityLow})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "category", decode[errorResponse](t, rec).Field)

	name := "db-primary"
	rec = f.do(http.MethodPatch, "/api/assets/"+asset.ID, store.AssetPatch{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "db-primary", decode[model.Asset](t, rec).Name)

	rec = f.do(http.MethodGet, "/api/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Asset](t, rec), 1)

	rec = f.do(http.MethodDelete, "/api/assets/"+asset.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/api/assets/"+asset.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)
	storetest.MustCreate(t, f.store, model.NewFinding{Title: "a", Severity: model.SeverityCritical})
	storetest.MustCreate(t, f.store, model.NewFinding{Title: "b", Severity: model.SeverityLow})

	rec := f.do(http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	flat := decode[map[string]int](t, rec)
	assert.Equal(t, 2, flat["total"])
	assert.Equal(t, 2, flat["open"])
	assert.Equal(t, 1, flat["severity_critical"])

	rec = f.do(http.MethodGet, "/api/metrics?view=full", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[metrics.Summary](t, rec).Total)
}
