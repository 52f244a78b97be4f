package csv

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/model"
)

func TestFindingsPresenter(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cvss := 7.5
	asset := "asset-1"

	p := NewFindingsPresenter([]model.Finding{{
		ID:               "f-1",
		Title:            "comma, inside",
		Severity:         model.SeverityHigh,
		RiskScore:        30,
		Status:           model.StatusOpen,
		CVSSScore:        &cvss,
		AssetID:          &asset,
		ExploitAvailable: true,
		CreatedAt:        created,
	}})

	var buf bytes.Buffer
	require.NoError(t, p.Present(&buf))

	expected := "ID,Title,Severity,Risk,Status,CVE,CWE,CVSS,Exploit,Asset,Assignee,Ticket,Created,Resolved,Due\n" +
		"f-1,\"comma, inside\",high,30,open,,,7.5,true,asset-1,,,2024-01-02T03:04:05Z,,\n"
	assert.Equal(t, expected, buf.String())
}

func TestFindingsPresenter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFindingsPresenter(nil).Present(&buf))
	assert.Equal(t, "ID,Title,Severity,Risk,Status,CVE,CWE,CVSS,Exploit,Asset,Assignee,Ticket,Created,Resolved,Due\n", buf.String())
}

func TestSummaryPresenter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryPresenter(metrics.Summary{Total: 4, Overdue: 1}).Present(&buf))

	out := buf.String()
	assert.Contains(t, out, "Metric,Count\n")
	assert.Contains(t, out, "overdue,1\n")
	assert.Contains(t, out, "total,4\n")
}
