package store

import (
	"strings"

	"github.com/anchore/riskboard/riskboard/activity"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 500
)

// FindingFilter selects findings. All set predicates must hold. Limit and Page/PageSize are mutually exclusive.
type FindingFilter struct {
	Severity model.Severity `json:"severity,omitempty" form:"severity"`
	Status   model.Status   `json:"status,omitempty" form:"status"`
	// Search is a case-insensitive substring match on the title.
	Search    string `json:"search,omitempty" form:"search"`
	HasTicket *bool  `json:"has_ticket,omitempty" form:"has_ticket"`
	Assignee  string `json:"assignee,omitempty" form:"assignee"`

	// Limit returns at most this many findings from the top ("top N" views).
	Limit int `json:"limit,omitempty" form:"limit"`
	// Page is 1-based.
	Page     int `json:"page,omitempty" form:"page"`
	PageSize int `json:"page_size,omitempty" form:"page_size"`
}

// FindingPage is one page of a filtered listing.
type FindingPage struct {
	Items []model.Finding `json:"items"`
	// Total is the number of matches before pagination.
	Total int64 `json:"total"`
}

// Validate checks the filter and fills in pagination defaults.
func (f *FindingFilter) Validate() error {
	if f.Severity != model.UnknownSeverity && model.ParseSeverity(string(f.Severity)) != f.Severity {
		return rberr.NewValidationError("severity", "unknown severity %q", f.Severity)
	}
	if f.Status != model.UnknownStatus && model.ParseStatus(string(f.Status)) != f.Status {
		return rberr.NewValidationError("status", "unknown status %q", f.Status)
	}
	if f.Limit < 0 {
		return rberr.NewValidationError("limit", "must not be negative")
	}
	if f.Page < 0 || f.PageSize < 0 {
		return rberr.NewValidationError("page", "page and page size must not be negative")
	}
	if f.Limit > 0 && (f.Page > 0 || f.PageSize > 0) {
		return rberr.NewValidationError("limit", "limit cannot be combined with page/page_size")
	}
	if f.PageSize > MaxPageSize {
		return rberr.NewValidationError("page_size", "must be at most %d", MaxPageSize)
	}
	if f.PageSize > 0 && f.Page == 0 {
		f.Page = 1
	}
	if f.Page > 0 && f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	return nil
}

// Window returns the offset and the maximum number of rows to return (0 means unbounded).
func (f FindingFilter) Window() (offset, limit int) {
	switch {
	case f.Limit > 0:
		return 0, f.Limit
	case f.Page > 0:
		return (f.Page - 1) * f.PageSize, f.PageSize
	}
	return 0, 0
}

// Matches evaluates the predicates of the filter against a single finding (pagination is ignored).
func (f FindingFilter) Matches(finding model.Finding) bool {
	if f.Severity != model.UnknownSeverity && finding.Severity != f.Severity {
		return false
	}
	if f.Status != model.UnknownStatus && finding.Status != f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(SearchKey(finding.Title), SearchKey(f.Search)) {
		return false
	}
	if f.HasTicket != nil && finding.HasTicket() != *f.HasTicket {
		return false
	}
	if f.Assignee != "" && finding.Assignee != f.Assignee {
		return false
	}
	return true
}

// ActivityFilter selects activity log entries, newest first.
type ActivityFilter = activity.Filter
