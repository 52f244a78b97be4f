package json

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

func TestPresenter(t *testing.T) {
	page := store.FindingPage{
		Items: []model.Finding{{
			ID:        "f-1",
			Title:     "<script> in comments",
			Severity:  model.SeverityMedium,
			Status:    model.StatusOpen,
			CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
		Total: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, NewPresenter(page).Present(&buf))
	out := buf.String()

	assert.Contains(t, out, `"title": "<script> in comments"`)
	assert.Contains(t, out, `"created_at": "2024-01-02T03:04:05Z"`)
	assert.Contains(t, out, `"total": 1`)
	assert.NotContains(t, out, `"resolved_at"`)
}
