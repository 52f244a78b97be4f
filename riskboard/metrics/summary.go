/*
Package metrics derives dashboard counts from the findings in a store. Nothing is cached: every Summarize call walks
the store again.
*/
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

const resolvedWindow = 7 * 24 * time.Hour

// AgeBucket groups non-terminal findings by how long ago they were created.
type AgeBucket string

const (
	AgeUpToWeek    AgeBucket = "0-7d"
	AgeUpToMonth   AgeBucket = "8-30d"
	AgeUpToQuarter AgeBucket = "31-90d"
	AgeOlder       AgeBucket = "90d+"
)

func AllAgeBuckets() []AgeBucket {
	return []AgeBucket{AgeUpToWeek, AgeUpToMonth, AgeUpToQuarter, AgeOlder}
}

func ageBucket(days int) AgeBucket {
	switch {
	case days <= 7:
		return AgeUpToWeek
	case days <= 30:
		return AgeUpToMonth
	case days <= 90:
		return AgeUpToQuarter
	}
	return AgeOlder
}

type Summary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	// BySeverity only counts findings that still need work (open or in progress).
	BySeverity        map[model.Severity]int `json:"by_severity"`
	ByStatus          map[model.Status]int   `json:"by_status"`
	AgeBuckets        map[AgeBucket]int      `json:"age_buckets"`
	ResolvedLast7Days int                    `json:"resolved_last_7_days"`
	WithTicket        int                    `json:"with_ticket"`
	Overdue           int                    `json:"overdue"`
}

func newSummary() Summary {
	s := Summary{
		BySeverity: make(map[model.Severity]int),
		ByStatus:   make(map[model.Status]int),
		AgeBuckets: make(map[AgeBucket]int),
	}
	for _, sev := range model.AllSeverities() {
		s.BySeverity[sev] = 0
	}
	for _, st := range model.AllStatuses() {
		s.ByStatus[st] = 0
	}
	for _, b := range AllAgeBuckets() {
		s.AgeBuckets[b] = 0
	}
	return s
}

func (s *Summary) add(f model.Finding, now time.Time) {
	s.Total++
	s.ByStatus[f.Status]++

	switch f.Status {
	case model.StatusOpen:
		s.Open++
	case model.StatusInProgress:
		s.InProgress++
	}

	if f.Status.Active() {
		s.BySeverity[f.Severity]++
		s.AgeBuckets[ageBucket(daysSince(f.CreatedAt, now))]++
		if f.DueDate != nil && f.DueDate.Before(now) {
			s.Overdue++
		}
	}

	if f.Status == model.StatusResolved && f.ResolvedAt != nil && now.Sub(*f.ResolvedAt) <= resolvedWindow {
		s.ResolvedLast7Days++
	}

	if f.HasTicket() {
		s.WithTicket++
	}
}

// Flatten renders the summary as the flat key-value record served to dashboards.
func (s Summary) Flatten() map[string]int {
	out := map[string]int{
		"total":                s.Total,
		"open":                 s.Open,
		"in_progress":          s.InProgress,
		"resolved_last_7_days": s.ResolvedLast7Days,
		"with_ticket":          s.WithTicket,
		"overdue":              s.Overdue,
	}
	for sev, n := range s.BySeverity {
		out[fmt.Sprintf("severity_%s", sev)] = n
	}
	for st, n := range s.ByStatus {
		out[fmt.Sprintf("status_%s", st)] = n
	}
	for b, n := range s.AgeBuckets {
		out[fmt.Sprintf("age_%s", b)] = n
	}
	return out
}

func daysSince(t, now time.Time) int {
	days := int(now.Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Aggregator computes summaries over a store.
type Aggregator struct {
	reader store.FindingStoreReader
	clock  func() time.Time
}

func NewAggregator(reader store.FindingStoreReader, clock func() time.Time) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{
		reader: reader,
		clock:  clock,
	}
}

// Summarize tallies every finding from a single unpaginated read, so the counts come from one consistent view of the
// store even while writers are active.
func (a *Aggregator) Summarize(ctx context.Context) (Summary, error) {
	now := a.clock().UTC()
	summary := newSummary()

	page, err := a.reader.ListFindings(ctx, store.FindingFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list findings: %w", err)
	}
	for _, f := range page.Items {
		summary.add(f, now)
	}
	return summary, nil
}
