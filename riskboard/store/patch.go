package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/scylladb/go-set/strset"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
)

// FindingPatch is a partial update; nil fields are left untouched. Ticket fields are deliberately absent (see
// AttachTicket) and so is CreatedAt, which never changes.
type FindingPatch struct {
	Title            *string         `json:"title,omitempty"`
	Description      *string         `json:"description,omitempty"`
	CVE              *string         `json:"cve,omitempty"`
	CWE              *string         `json:"cwe,omitempty"`
	Severity         *model.Severity `json:"severity,omitempty"`
	CVSSScore        *float64        `json:"cvss_score,omitempty"`
	AssetID          *string         `json:"asset_id,omitempty"`
	ExploitAvailable *bool           `json:"exploit_available,omitempty"`
	Status           *model.Status   `json:"status,omitempty"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
	// ClearResolvedAt drops the resolution timestamp when moving a finding out of the resolved state. Without it a
	// reopened finding keeps the time it was last resolved.
	ClearResolvedAt  bool       `json:"clear_resolved_at,omitempty"`
	Assignee         *string    `json:"assignee,omitempty"`
	RemediationNotes *string    `json:"remediation_notes,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	// Rescore recomputes the risk score from the finding's current attributes. Without it, edits (even to severity)
	// leave the score as computed at creation.
	Rescore bool `json:"rescore,omitempty"`
}

func (p FindingPatch) IsEmpty() bool {
	return p == FindingPatch{}
}

func (p FindingPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return rberr.NewValidationError("title", "must not be empty")
	}
	if p.Severity != nil && model.ParseSeverity(string(*p.Severity)) != *p.Severity {
		return rberr.NewValidationError("severity", "unknown severity %q", *p.Severity)
	}
	if p.Status != nil && model.ParseStatus(string(*p.Status)) != *p.Status {
		return rberr.NewValidationError("status", "unknown status %q", *p.Status)
	}
	if p.CVSSScore != nil && !validCVSS(*p.CVSSScore) {
		return rberr.NewValidationError("cvss_score", "must be between 0 and 10")
	}
	if p.ClearResolvedAt {
		if p.ResolvedAt != nil {
			return rberr.NewValidationError("resolved_at", "cannot both set and clear the resolution time")
		}
		if p.Status != nil && *p.Status == model.StatusResolved {
			return rberr.NewValidationError("resolved_at", "a resolved finding must keep its resolution time")
		}
	}
	return nil
}

// Apply mutates the finding according to the patch and returns the names of the fields that changed. UpdatedAt is
// always rewritten, and a resolved finding always leaves with a resolution time.
func (p FindingPatch) Apply(f *model.Finding, now time.Time) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}

	setString("title", &f.Title, p.Title)
	setString("description", &f.Description, p.Description)
	setString("cve", &f.CVE, p.CVE)
	setString("cwe", &f.CWE, p.CWE)
	setString("assignee", &f.Assignee, p.Assignee)
	setString("remediation_notes", &f.RemediationNotes, p.RemediationNotes)

	if p.Severity != nil && f.Severity != *p.Severity {
		f.Severity = *p.Severity
		changed = append(changed, "severity")
	}
	if p.CVSSScore != nil && (f.CVSSScore == nil || *f.CVSSScore != *p.CVSSScore) {
		f.CVSSScore = cloneFloat(p.CVSSScore)
		changed = append(changed, "cvss_score")
	}
	if p.AssetID != nil {
		next := cloneString(p.AssetID)
		if *next == "" {
			next = nil
		}
		if !equalStringPtr(f.AssetID, next) {
			f.AssetID = next
			changed = append(changed, "asset_id")
		}
	}
	if p.ExploitAvailable != nil && f.ExploitAvailable != *p.ExploitAvailable {
		f.ExploitAvailable = *p.ExploitAvailable
		changed = append(changed, "exploit_available")
	}
	if p.DueDate != nil && !equalTimePtr(f.DueDate, p.DueDate) {
		f.DueDate = cloneTime(p.DueDate)
		changed = append(changed, "due_date")
	}

	becameResolved := false
	if p.Status != nil && f.Status != *p.Status {
		becameResolved = *p.Status == model.StatusResolved
		f.Status = *p.Status
		changed = append(changed, "status")
	}

	switch {
	case p.ResolvedAt != nil:
		if !equalTimePtr(f.ResolvedAt, p.ResolvedAt) {
			f.ResolvedAt = cloneTime(p.ResolvedAt)
			changed = append(changed, "resolved_at")
		}
	case becameResolved:
		ts := now
		f.ResolvedAt = &ts
		changed = append(changed, "resolved_at")
	case p.ClearResolvedAt && f.Status != model.StatusResolved && f.ResolvedAt != nil:
		f.ResolvedAt = nil
		changed = append(changed, "resolved_at")
	}

	if f.Status == model.StatusResolved && f.ResolvedAt == nil {
		ts := now
		f.ResolvedAt = &ts
		changed = append(changed, "resolved_at")
	}

	f.TitleSearch = SearchKey(f.Title)
	f.UpdatedAt = now
	return dedupe(changed), nil
}

// Describe renders the patch for the activity log.
func Describe(changed []string) string {
	if len(changed) == 0 {
		return "no field changes"
	}
	return fmt.Sprintf("changed: %s", strings.Join(changed, ", "))
}

// PatchActivity picks the action and details of the single activity entry recorded for an applied patch. A rescore
// is folded into that entry; an update that only rescores is recorded as a rescore.
func PatchActivity(action model.Action, changed []string, rescore bool, before, after int) (model.Action, string) {
	if !rescore {
		return action, Describe(changed)
	}
	scored := RescoredDetails(before, after)
	if len(changed) == 0 && action == model.ActionUpdated {
		return model.ActionRescored, scored
	}
	return action, Describe(changed) + "; " + scored
}

// AssetPatch is a partial update of an asset.
type AssetPatch struct {
	Name        *string              `json:"name,omitempty"`
	Category    *model.AssetCategory `json:"category,omitempty"`
	Criticality *model.Criticality   `json:"criticality,omitempty"`
	Environment *string              `json:"environment,omitempty"`
	Hostname    *string              `json:"hostname,omitempty"`
	IPAddress   *string              `json:"ip_address,omitempty"`
}

func (p AssetPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return rberr.NewValidationError("name", "must not be empty")
	}
	if p.Category != nil {
		if _, ok := model.ParseAssetCategory(string(*p.Category)); !ok {
			return rberr.NewValidationError("category", "unknown category %q", *p.Category)
		}
	}
	if p.Criticality != nil && model.ParseCriticality(string(*p.Criticality)) != *p.Criticality {
		return rberr.NewValidationError("criticality", "unknown criticality %q", *p.Criticality)
	}
	return nil
}

func (p AssetPatch) Apply(a *model.Asset, now time.Time) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setString("name", &a.Name, p.Name)
	setString("environment", &a.Environment, p.Environment)
	setString("hostname", &a.Hostname, p.Hostname)
	setString("ip_address", &a.IPAddress, p.IPAddress)

	if p.Category != nil && a.Category != *p.Category {
		a.Category = *p.Category
		changed = append(changed, "category")
	}
	if p.Criticality != nil && a.Criticality != *p.Criticality {
		a.Criticality = *p.Criticality
		changed = append(changed, "criticality")
	}

	a.UpdatedAt = now
	return changed, nil
}

func validCVSS(v float64) bool {
	return v >= 0 && v <= 10
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := strset.New(names...).List()
	sort.Strings(out)
	return out
}
