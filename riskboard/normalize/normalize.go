/*
Package normalize maps loosely-typed import rows onto the canonical finding creation payload. A row is never rejected:
anything missing or unparsable degrades to a safe default.
*/
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/anchore/riskboard/internal/cvss"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/model"
)

const (
	UntitledFinding = "Untitled Finding"
	DefaultSource   = "import"
)

// Row is a single record as read from a delimited import file: arbitrary keys, string values.
type Row map[string]string

var (
	titleKeys       = []string{"title", "name", "vulnerability"}
	severityKeys    = []string{"severity"}
	cvssScoreKeys   = []string{"cvss_score", "cvss", "cvss_base_score"}
	cvssVectorKeys  = []string{"cvss_vector", "vector"}
	exploitKeys     = []string{"exploit_available", "exploitable", "exploit", "has_exploit", "known_exploited"}
	descriptionKeys = []string{"description", "details", "summary"}
	cveKeys         = []string{"cve", "cve_id"}
	cweKeys         = []string{"cwe", "cwe_id"}
	assetKeys       = []string{"asset_id", "asset"}
	assigneeKeys    = []string{"assignee", "owner"}
	remediationKeys = []string{"remediation_notes", "remediation", "solution"}
	sourceKeys      = []string{"source", "scanner"}
	detectedKeys    = []string{"detected_at", "first_seen", "discovered"}
	dueKeys         = []string{"due_date", "due"}
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Finding normalizes a single row into a creation payload.
func Finding(row Row) model.NewFinding {
	r := fold(row)

	nf := model.NewFinding{
		Title:            firstOr(r, titleKeys, UntitledFinding),
		Severity:         severity(first(r, severityKeys)),
		CVSSScore:        cvssScore(r),
		ExploitAvailable: anyTrue(r, exploitKeys),
		Description:      first(r, descriptionKeys),
		CVE:              strings.ToUpper(first(r, cveKeys)),
		CWE:              strings.ToUpper(first(r, cweKeys)),
		Assignee:         first(r, assigneeKeys),
		RemediationNotes: first(r, remediationKeys),
		Source:           firstOr(r, sourceKeys, DefaultSource),
		DetectedAt:       timestamp(first(r, detectedKeys)),
		DueDate:          timestamp(first(r, dueKeys)),
	}

	if asset := first(r, assetKeys); asset != "" {
		nf.AssetID = &asset
	}

	return nf
}

// Findings normalizes every row, preserving order and count.
func Findings(rows []Row) []model.NewFinding {
	out := make([]model.NewFinding, 0, len(rows))
	for _, row := range rows {
		out = append(out, Finding(row))
	}
	return out
}

// fold lower-cases keys and folds separators so "Exploit Available" and "exploit-available" match "exploit_available".
// Values are trimmed; empty values are dropped.
func fold(row Row) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		key := strings.ToLower(strings.TrimSpace(k))
		key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
		v = strings.TrimSpace(v)
		if key == "" || v == "" {
			continue
		}
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = v
	}
	return out
}

func first(r map[string]string, keys []string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v
		}
	}
	return ""
}

func firstOr(r map[string]string, keys []string, fallback string) string {
	if v := first(r, keys); v != "" {
		return v
	}
	return fallback
}

func anyTrue(r map[string]string, keys []string) bool {
	for _, k := range keys {
		if strings.EqualFold(r[k], "true") {
			return true
		}
	}
	return false
}

func severity(s string) model.Severity {
	if sev := model.ParseSeverity(s); sev != model.UnknownSeverity {
		return sev
	}
	return model.SeverityMedium
}

func cvssScore(r map[string]string) *float64 {
	if raw := first(r, cvssScoreKeys); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return &v
		}
		log.WithFields("value", raw).Trace("ignoring malformed cvss score")
	}

	if vector := first(r, cvssVectorKeys); vector != "" {
		v, err := cvss.BaseScore(vector)
		if err != nil {
			log.WithFields("vector", vector, "error", err).Trace("ignoring malformed cvss vector")
			return nil
		}
		return &v
	}
	return nil
}

func timestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	log.WithFields("value", s).Trace("ignoring malformed timestamp")
	return nil
}
