package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

type renderConfig struct {
	withColor bool
	now       func() time.Time
}

func defaultRenderConfig() renderConfig {
	return renderConfig{
		withColor: color.SupportColor(),
		now:       time.Now,
	}
}

func newTable(output io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(output)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// findings //////////////////////////////////////////////////////

type FindingsPresenter struct {
	renderConfig
	page store.FindingPage
}

func NewFindingsPresenter(page store.FindingPage) *FindingsPresenter {
	return &FindingsPresenter{
		renderConfig: defaultRenderConfig(),
		page:         page,
	}
}

func (p *FindingsPresenter) Present(output io.Writer) error {
	if len(p.page.Items) == 0 {
		_, err := io.WriteString(output, "No findings found\n")
		return err
	}

	now := p.now()
	table := newTable(output, []string{"ID", "Risk", "Severity", "Status", "Title", "CVE", "Assignee", "Ticket", "Age"})
	for _, f := range p.page.Items {
		row := []string{
			shortID(f.ID),
			strconv.Itoa(f.RiskScore),
			string(f.Severity),
			string(f.Status),
			truncate(f.Title, 60),
			f.CVE,
			f.Assignee,
			f.TicketKey,
			humanize.RelTime(f.AgeStart(), now, "ago", "from now"),
		}
		if p.withColor {
			colors := make([]tablewriter.Colors, len(row))
			colors[1] = riskColor(f.RiskScore)
			colors[2] = severityColor(f.Severity)
			table.Rich(row, colors)
		} else {
			table.Append(row)
		}
	}
	table.Render()

	if shown := int64(len(p.page.Items)); shown < p.page.Total {
		_, err := fmt.Fprintf(output, "\nshowing %d of %s findings\n", shown, humanize.Comma(p.page.Total))
		return err
	}
	return nil
}

// FindingPresenter shows every field of a single finding.
type FindingPresenter struct {
	renderConfig
	finding model.Finding
}

func NewFindingPresenter(f model.Finding) *FindingPresenter {
	return &FindingPresenter{
		renderConfig: defaultRenderConfig(),
		finding:      f,
	}
}

func (p *FindingPresenter) Present(output io.Writer) error {
	f := p.finding
	fields := [][]string{
		{"ID", f.ID},
		{"Title", f.Title},
		{"Severity", string(f.Severity)},
		{"Risk Score", strconv.Itoa(f.RiskScore)},
		{"Status", string(f.Status)},
		{"CVE", f.CVE},
		{"CWE", f.CWE},
		{"CVSS", optionalFloat(f.CVSSScore)},
		{"Exploit Available", strconv.FormatBool(f.ExploitAvailable)},
		{"Asset", optionalString(f.AssetID)},
		{"Source", f.Source},
		{"Assignee", f.Assignee},
		{"Ticket", strings.TrimSpace(strings.Join([]string{f.TicketKey, f.TicketStatus, f.TicketURL}, " "))},
		{"Created", p.timestamp(&f.CreatedAt)},
		{"Updated", p.timestamp(&f.UpdatedAt)},
		{"Detected", p.timestamp(f.DetectedAt)},
		{"Resolved", p.timestamp(f.ResolvedAt)},
		{"Due", p.timestamp(f.DueDate)},
		{"Description", f.Description},
		{"Remediation", f.RemediationNotes},
	}

	table := newTable(output, []string{"Field", "Value"})
	for _, row := range fields {
		if row[1] == "" {
			continue
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func (p renderConfig) timestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", t.UTC().Format(time.RFC3339), humanize.RelTime(*t, p.now(), "ago", "from now"))
}

// metrics //////////////////////////////////////////////////////

type SummaryPresenter struct {
	renderConfig
	summary metrics.Summary
}

func NewSummaryPresenter(s metrics.Summary) *SummaryPresenter {
	return &SummaryPresenter{
		renderConfig: defaultRenderConfig(),
		summary:      s,
	}
}

func (p *SummaryPresenter) Present(output io.Writer) error {
	s := p.summary
	table := newTable(output, []string{"Metric", "Count"})

	appendRow := func(name string, n int, c tablewriter.Colors) {
		row := []string{name, humanize.Comma(int64(n))}
		if p.withColor && c != nil {
			table.Rich(row, []tablewriter.Colors{{}, c})
			return
		}
		table.Append(row)
	}

	appendRow("total", s.Total, nil)
	appendRow("open", s.Open, nil)
	appendRow("in progress", s.InProgress, nil)
	for _, sev := range model.AllSeverities() {
		appendRow("active "+string(sev), s.BySeverity[sev], severityColor(sev))
	}
	for _, st := range model.AllStatuses() {
		appendRow("status "+string(st), s.ByStatus[st], nil)
	}
	for _, b := range metrics.AllAgeBuckets() {
		appendRow("age "+string(b), s.AgeBuckets[b], nil)
	}
	appendRow("resolved last 7 days", s.ResolvedLast7Days, nil)
	appendRow("with ticket", s.WithTicket, nil)
	appendRow("overdue", s.Overdue, tablewriter.Colors{tablewriter.Bold})

	table.Render()
	return nil
}

// assets //////////////////////////////////////////////////////

type AssetsPresenter struct {
	renderConfig
	assets []model.Asset
}

func NewAssetsPresenter(assets []model.Asset) *AssetsPresenter {
	return &AssetsPresenter{
		renderConfig: defaultRenderConfig(),
		assets:       assets,
	}
}

func (p *AssetsPresenter) Present(output io.Writer) error {
	if len(p.assets) == 0 {
		_, err := io.WriteString(output, "No assets found\n")
		return err
	}

	table := newTable(output, []string{"ID", "Name", "Category", "Criticality", "Environment", "Hostname", "IP"})
	for _, a := range p.assets {
		table.Append([]string{
			shortID(a.ID),
			a.Name,
			string(a.Category),
			string(a.Criticality),
			a.Environment,
			a.Hostname,
			a.IPAddress,
		})
	}
	table.Render()
	return nil
}

// activity //////////////////////////////////////////////////////

type ActivityPresenter struct {
	renderConfig
	entries []model.ActivityLogEntry
}

func NewActivityPresenter(entries []model.ActivityLogEntry) *ActivityPresenter {
	return &ActivityPresenter{
		renderConfig: defaultRenderConfig(),
		entries:      entries,
	}
}

func (p *ActivityPresenter) Present(output io.Writer) error {
	if len(p.entries) == 0 {
		_, err := io.WriteString(output, "No activity recorded\n")
		return err
	}

	now := p.now()
	table := newTable(output, []string{"When", "Entity", "ID", "Action", "Actor", "Details"})
	for _, e := range p.entries {
		table.Append([]string{
			humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
			string(e.EntityType),
			shortID(e.EntityID),
			string(e.Action),
			e.Actor,
			truncate(e.Details, 80),
		})
	}
	table.Render()
	return nil
}

// helpers //////////////////////////////////////////////////////

// shortID abbreviates uuids the way git abbreviates hashes; the full id is available with -o json.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func severityColor(s model.Severity) tablewriter.Colors {
	fontType, fg := tablewriter.Normal, tablewriter.Normal

	switch s {
	case model.SeverityCritical:
		fontType = tablewriter.Bold
		fg = tablewriter.FgRedColor
	case model.SeverityHigh:
		fg = tablewriter.FgRedColor
	case model.SeverityMedium:
		fg = tablewriter.FgYellowColor
	case model.SeverityLow:
		fg = tablewriter.FgGreenColor
	case model.SeverityInfo:
		fg = tablewriter.FgBlueColor
	}

	return tablewriter.Colors{fontType, fg}
}

func riskColor(score int) tablewriter.Colors {
	switch {
	case score >= 80:
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgRedColor}
	case score >= 50:
		return tablewriter.Colors{tablewriter.FgYellowColor}
	}
	return tablewriter.Colors{}
}
