package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/model"
)

var findingHeader = []string{
	"ID", "Title", "Severity", "Risk", "Status", "CVE", "CWE", "CVSS", "Exploit", "Asset", "Assignee", "Ticket",
	"Created", "Resolved", "Due",
}

type FindingsPresenter struct {
	findings []model.Finding
}

func NewFindingsPresenter(findings []model.Finding) *FindingsPresenter {
	return &FindingsPresenter{
		findings: findings,
	}
}

func (p *FindingsPresenter) Present(output io.Writer) error {
	writer := csv.NewWriter(output)
	if err := writer.Write(findingHeader); err != nil {
		return err
	}
	for _, f := range p.findings {
		if err := writer.Write(findingRow(f)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func findingRow(f model.Finding) []string {
	cvss := ""
	if f.CVSSScore != nil {
		cvss = strconv.FormatFloat(*f.CVSSScore, 'f', 1, 64)
	}
	asset := ""
	if f.AssetID != nil {
		asset = *f.AssetID
	}
	return []string{
		f.ID,
		f.Title,
		string(f.Severity),
		strconv.Itoa(f.RiskScore),
		string(f.Status),
		f.CVE,
		f.CWE,
		cvss,
		strconv.FormatBool(f.ExploitAvailable),
		asset,
		f.Assignee,
		f.TicketKey,
		f.CreatedAt.UTC().Format(time.RFC3339),
		formatTime(f.ResolvedAt),
		formatTime(f.DueDate),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

type SummaryPresenter struct {
	summary metrics.Summary
}

func NewSummaryPresenter(s metrics.Summary) *SummaryPresenter {
	return &SummaryPresenter{
		summary: s,
	}
}

func (p *SummaryPresenter) Present(output io.Writer) error {
	flat := p.summary.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writer := csv.NewWriter(output)
	if err := writer.Write([]string{"Metric", "Count"}); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writer.Write([]string{k, fmt.Sprint(flat[k])}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
