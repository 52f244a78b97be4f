package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anchore/riskboard/riskboard/activity"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/normalize"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/risk"
)

// Options are the behaviors shared by every backend: how findings are scored, what time it is, and how ids are made.
type Options struct {
	Weights risk.Weights
	Clock   func() time.Time
	NewID   func() string
	// Audit decorates the activity recorder used for every mutation.
	Audit []activity.Middleware
}

type Option func(*Options)

func WithWeights(w risk.Weights) Option {
	return func(o *Options) {
		o.Weights = w
	}
}

func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(o *Options) {
		o.NewID = fn
	}
}

func WithActivityMiddleware(mw ...activity.Middleware) Option {
	return func(o *Options) {
		o.Audit = append(o.Audit, mw...)
	}
}

func DefaultOptions() Options {
	return Options{
		Weights: risk.DefaultWeights(),
		Clock: func() time.Time {
			return time.Now().UTC()
		},
		NewID: func() string {
			return uuid.NewString()
		},
	}
}

func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Recorder decorates the backend's recorder with the configured middleware.
func (o Options) Recorder(r activity.Recorder) activity.Recorder {
	return activity.Chain(r, o.Audit...)
}

func (o Options) Now() time.Time {
	return o.Clock().UTC()
}

// ValidateNewFinding rejects malformed required fields on a direct create.
func ValidateNewFinding(nf model.NewFinding) error {
	if strings.TrimSpace(nf.Title) == "" {
		return rberr.NewValidationError("title", "must not be empty")
	}
	if model.ParseSeverity(string(nf.Severity)) != nf.Severity || nf.Severity == model.UnknownSeverity {
		return rberr.NewValidationError("severity", "unknown severity %q", nf.Severity)
	}
	if nf.CVSSScore != nil && !validCVSS(*nf.CVSSScore) {
		return rberr.NewValidationError("cvss_score", "must be between 0 and 10")
	}
	if nf.AssetID != nil && strings.TrimSpace(*nf.AssetID) == "" {
		return rberr.NewValidationError("asset_id", "must not be blank when given")
	}
	return nil
}

// SanitizeImported clamps and defaults the risk-relevant fields of an imported record instead of rejecting it, since
// import payloads bypass strict validation.
func SanitizeImported(nf model.NewFinding) model.NewFinding {
	if strings.TrimSpace(nf.Title) == "" {
		nf.Title = normalize.UntitledFinding
	}
	if sev := model.ParseSeverity(string(nf.Severity)); sev != model.UnknownSeverity {
		nf.Severity = sev
	} else {
		nf.Severity = model.SeverityMedium
	}
	if nf.CVSSScore != nil && !validCVSS(*nf.CVSSScore) {
		nf.CVSSScore = nil
	}
	if nf.AssetID != nil && strings.TrimSpace(*nf.AssetID) == "" {
		nf.AssetID = nil
	}
	if strings.TrimSpace(nf.Source) == "" {
		nf.Source = normalize.DefaultSource
	}
	return nf
}

// BuildFinding turns a validated creation payload into a new open finding, scored against the given asset
// criticality (nil when the finding has no asset, or the asset does not exist).
func (o Options) BuildFinding(nf model.NewFinding, crit *model.Criticality) model.Finding {
	now := o.Now()
	source := nf.Source
	if source == "" {
		source = "manual"
	}
	nf.Source = source

	f := model.Finding{
		ID:               o.NewID(),
		CreatedAt:        now,
		UpdatedAt:        now,
		Title:            strings.TrimSpace(nf.Title),
		Description:      nf.Description,
		CVE:              nf.CVE,
		CWE:              nf.CWE,
		Severity:         nf.Severity,
		CVSSScore:        cloneFloat(nf.CVSSScore),
		AssetID:          cloneString(nf.AssetID),
		Source:           source,
		ExploitAvailable: nf.ExploitAvailable,
		Status:           model.StatusOpen,
		Assignee:         nf.Assignee,
		RemediationNotes: nf.RemediationNotes,
		DueDate:          cloneTime(nf.DueDate),
		DetectedAt:       cloneTime(nf.DetectedAt),
		Fingerprint:      nf.Fingerprint(),
	}
	f.TitleSearch = SearchKey(f.Title)
	f.RiskScore = o.ScoreFinding(f, crit)
	return f
}

// ScoreFinding computes the risk score of a finding as of now.
func (o Options) ScoreFinding(f model.Finding, crit *model.Criticality) int {
	days := f.DaysOpen(o.Now())
	return o.Weights.Score(risk.Input{
		Severity:         f.Severity,
		ExploitAvailable: f.ExploitAvailable,
		AssetCriticality: crit,
		DaysOpen:         &days,
	})
}

func ValidateNewAsset(na model.NewAsset) error {
	if strings.TrimSpace(na.Name) == "" {
		return rberr.NewValidationError("name", "must not be empty")
	}
	if _, ok := model.ParseAssetCategory(string(na.Category)); !ok {
		return rberr.NewValidationError("category", "unknown category %q", na.Category)
	}
	if c := model.ParseCriticality(string(na.Criticality)); c == model.UnknownCriticality || c != na.Criticality {
		return rberr.NewValidationError("criticality", "unknown criticality %q", na.Criticality)
	}
	return nil
}

func (o Options) BuildAsset(na model.NewAsset) model.Asset {
	now := o.Now()
	category, _ := model.ParseAssetCategory(string(na.Category))
	return model.Asset{
		ID:          o.NewID(),
		Name:        strings.TrimSpace(na.Name),
		Category:    category,
		Criticality: na.Criticality,
		Environment: na.Environment,
		Hostname:    na.Hostname,
		IPAddress:   na.IPAddress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Activity builds the audit entry for a mutation, attributing it to the actor carried by the context.
func (o Options) Activity(ctx context.Context, entity model.EntityType, id string, action model.Action, details string) model.ActivityLogEntry {
	return model.ActivityLogEntry{
		EntityType: entity,
		EntityID:   id,
		Action:     action,
		Details:    details,
		Actor:      ActorFromContext(ctx),
		CreatedAt:  o.Now(),
	}
}

func CreatedDetails(f model.Finding) string {
	return fmt.Sprintf("severity=%s risk_score=%d source=%s", f.Severity, f.RiskScore, f.Source)
}

func TicketDetails(t model.Ticket) string {
	return fmt.Sprintf("ticket=%s status=%s", t.Key, t.Status)
}

// TicketKeyFromDetails recovers the ticket key from the details of a ticket_attached activity entry.
func TicketKeyFromDetails(details string) (string, bool) {
	rest, ok := strings.CutPrefix(details, "ticket=")
	if !ok {
		return "", false
	}
	key, _, _ := strings.Cut(rest, " ")
	return key, key != ""
}

func ValidateTicket(t model.Ticket) error {
	if strings.TrimSpace(t.Key) == "" {
		return rberr.NewValidationError("ticket_key", "must not be empty")
	}
	return nil
}

type actorKey struct{}

// WithActor attributes the mutations made with the returned context to the given actor in the activity log.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

func RescoredDetails(before, after int) string {
	return fmt.Sprintf("risk_score %d -> %d", before, after)
}

func AssetDetails(a model.Asset) string {
	return fmt.Sprintf("name=%s category=%s criticality=%s", a.Name, a.Category, a.Criticality)
}
