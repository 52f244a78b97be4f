package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

func addFindingPatchFlags(flags *pflag.FlagSet) {
	flags.String("title", "", "new title")
	flags.String("description", "", "new description")
	flags.String("cve", "", "CVE identifier")
	flags.String("cwe", "", "CWE identifier")
	flags.String("severity", "", fmt.Sprintf("severity (%s)", joinSeverities()))
	flags.Float64("cvss", 0, "CVSS base score (0-10)")
	flags.String("asset", "", "id of the affected asset")
	flags.Bool("exploit", false, "whether a public exploit is available")
	flags.String("status", "", fmt.Sprintf("workflow status (%s)", joinStatuses()))
	flags.String("resolved-at", "", "resolution time (YYYY-MM-DD or RFC3339)")
	flags.Bool("clear-resolved", false, "drop the resolution time when reopening")
	flags.String("assignee", "", "person responsible for the fix")
	flags.String("notes", "", "remediation notes")
	flags.String("due", "", "due date (YYYY-MM-DD or RFC3339)")
	flags.Bool("rescore", false, "recompute the risk score from the updated attributes")
}

// findingPatchFromFlags builds a patch from only the flags that were given on the command line.
func findingPatchFromFlags(flags *pflag.FlagSet) (store.FindingPatch, error) {
	var p store.FindingPatch

	p.Title = changedString(flags, "title")
	p.Description = changedString(flags, "description")
	p.CVE = changedString(flags, "cve")
	p.CWE = changedString(flags, "cwe")
	p.AssetID = changedString(flags, "asset")
	p.Assignee = changedString(flags, "assignee")
	p.RemediationNotes = changedString(flags, "notes")

	if v := changedString(flags, "severity"); v != nil {
		sev := model.Severity(strings.ToLower(strings.TrimSpace(*v)))
		p.Severity = &sev
	}
	if v := changedString(flags, "status"); v != nil {
		st := model.Status(strings.ToLower(strings.TrimSpace(*v)))
		p.Status = &st
	}
	if flags.Changed("cvss") {
		v, err := flags.GetFloat64("cvss")
		if err != nil {
			return p, err
		}
		p.CVSSScore = &v
	}
	if flags.Changed("exploit") {
		v, err := flags.GetBool("exploit")
		if err != nil {
			return p, err
		}
		p.ExploitAvailable = &v
	}

	var err error
	if p.ResolvedAt, err = changedTime(flags, "resolved-at"); err != nil {
		return p, err
	}
	if p.DueDate, err = changedTime(flags, "due"); err != nil {
		return p, err
	}
	if p.ClearResolvedAt, err = flags.GetBool("clear-resolved"); err != nil {
		return p, err
	}
	if p.Rescore, err = flags.GetBool("rescore"); err != nil {
		return p, err
	}

	if p.IsEmpty() {
		return p, fmt.Errorf("no changes given (see --help for the fields that can be updated)")
	}
	return p, nil
}

func addFindingFilterFlags(flags *pflag.FlagSet) {
	flags.String("severity", "", fmt.Sprintf("only findings with this severity (%s)", joinSeverities()))
	flags.String("status", "", fmt.Sprintf("only findings with this status (%s)", joinStatuses()))
	flags.String("search", "", "case-insensitive substring of the title")
	flags.String("assignee", "", "only findings assigned to this person")
	flags.Bool("has-ticket", false, "only findings with (or, with =false, without) a ticket")
	flags.Int("limit", 0, "show only the top N findings")
	flags.Int("page", 0, "page number (1-based)")
	flags.Int("page-size", 0, fmt.Sprintf("findings per page (default %d when paging, max %d)", store.DefaultPageSize, store.MaxPageSize))
}

func findingFilterFromFlags(flags *pflag.FlagSet) (store.FindingFilter, error) {
	var f store.FindingFilter
	var err error

	if v := changedString(flags, "severity"); v != nil {
		f.Severity = model.Severity(strings.ToLower(strings.TrimSpace(*v)))
	}
	if v := changedString(flags, "status"); v != nil {
		f.Status = model.Status(strings.ToLower(strings.TrimSpace(*v)))
	}
	if f.Search, err = flags.GetString("search"); err != nil {
		return f, err
	}
	if f.Assignee, err = flags.GetString("assignee"); err != nil {
		return f, err
	}
	if flags.Changed("has-ticket") {
		v, err := flags.GetBool("has-ticket")
		if err != nil {
			return f, err
		}
		f.HasTicket = &v
	}
	if f.Limit, err = flags.GetInt("limit"); err != nil {
		return f, err
	}
	if f.Page, err = flags.GetInt("page"); err != nil {
		return f, err
	}
	if f.PageSize, err = flags.GetInt("page-size"); err != nil {
		return f, err
	}
	return f, nil
}

func changedString(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return nil
	}
	return &v
}

func changedTime(flags *pflag.FlagSet, name string) (*time.Time, error) {
	v := changedString(flags, name)
	if v == nil {
		return nil, nil
	}
	t, err := parseTime(*v)
	if err != nil {
		return nil, fmt.Errorf("bad --%s: %w", name, err)
	}
	return &t, nil
}

func joinSeverities() string {
	var names []string
	for _, s := range model.AllSeverities() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

func joinStatuses() string {
	var names []string
	for _, s := range model.AllStatuses() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}
