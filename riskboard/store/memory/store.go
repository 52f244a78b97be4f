/*
Package memory is a store.Store held entirely in process memory. It is meant for tests, demos and short-lived CLI runs
(db.backend: memory); nothing survives the process.
*/
package memory

import (
	"context"
	"sync"

	"github.com/scylladb/go-set/strset"

	"github.com/anchore/riskboard/internal/bus"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/activity"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps findings and assets in maps guarded by a single lock. A mutation is staged on copies, audited, and only
// then committed, so a failed audit write leaves no trace.
type Store struct {
	opts     store.Options
	recorder activity.Recorder

	lock     sync.RWMutex
	findings map[string]model.Finding
	assets   map[string]model.Asset
}

func New(opts ...store.Option) *Store {
	o := store.NewOptions(opts...)
	return &Store{
		opts:     o,
		recorder: o.Recorder(activity.NewMemoryRecorder()),
		findings: make(map[string]model.Finding),
		assets:   make(map[string]model.Asset),
	}
}

func (s *Store) Close() error {
	return nil
}

// findings //////////////////////////////////////////////////////

func (s *Store) GetFinding(ctx context.Context, id string) (*model.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	f, ok := s.findings[id]
	if !ok {
		return nil, rberr.ErrNotFound
	}
	return cloned(f), nil
}

func (s *Store) ListFindings(ctx context.Context, filter store.FindingFilter) (*store.FindingPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.lock.RLock()
	matches := make([]model.Finding, 0)
	for _, f := range s.findings {
		if filter.Matches(f) {
			matches = append(matches, store.CloneFinding(f))
		}
	}
	s.lock.RUnlock()

	store.SortFindings(matches)

	page := &store.FindingPage{Total: int64(len(matches))}
	offset, limit := filter.Window()
	if offset >= len(matches) {
		page.Items = []model.Finding{}
		return page, nil
	}
	end := len(matches)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	page.Items = matches[offset:end]
	return page, nil
}

func (s *Store) CreateFinding(ctx context.Context, nf model.NewFinding) (*model.Finding, error) {
	if err := store.ValidateNewFinding(nf); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	f := s.opts.BuildFinding(nf, s.criticalityOf(nf.AssetID))
	entry := s.opts.Activity(ctx, model.EntityFinding, f.ID, model.ActionCreated, store.CreatedDetails(f))
	if err := s.audit(ctx, entry); err != nil {
		return nil, err
	}
	s.findings[f.ID] = f

	publishMutation(model.EntityFinding, model.ActionCreated, 1)
	return cloned(f), nil
}

func (s *Store) UpdateFinding(ctx context.Context, id string, p store.FindingPatch) (*model.Finding, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	current, ok := s.findings[id]
	if !ok {
		return nil, rberr.ErrNotFound
	}

	next, entry, err := s.applyPatch(ctx, current, p, model.ActionUpdated)
	if err != nil {
		return nil, err
	}
	if err := s.audit(ctx, entry); err != nil {
		return nil, err
	}
	s.findings[id] = next

	publishMutation(model.EntityFinding, model.ActionUpdated, 1)
	return cloned(next), nil
}

func (s *Store) BulkUpdateFindings(ctx context.Context, ids []string, p store.FindingPatch) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	staged := make(map[string]model.Finding)
	var entries []model.ActivityLogEntry
	for _, id := range strset.New(ids...).List() {
		current, ok := s.findings[id]
		if !ok {
			log.WithFields("id", id).Debug("skipping unknown finding in bulk update")
			continue
		}
		next, entry, err := s.applyPatch(ctx, current, p, model.ActionBulkUpdated)
		if err != nil {
			return 0, err
		}
		staged[id] = next
		entries = append(entries, entry)
	}

	if len(staged) == 0 {
		return 0, nil
	}
	if err := s.audit(ctx, entries...); err != nil {
		return 0, err
	}
	for id, f := range staged {
		s.findings[id] = f
	}

	publishMutation(model.EntityFinding, model.ActionBulkUpdated, len(staged))
	return len(staged), nil
}

func (s *Store) ImportFindings(ctx context.Context, nfs []model.NewFinding) (int, error) {
	created, err := store.ImportEach(ctx, nfs, func(nf model.NewFinding) error {
		return s.importOne(ctx, nf)
	})
	if created > 0 {
		publishMutation(model.EntityFinding, model.ActionImported, created)
	}
	return created, err
}

func (s *Store) importOne(ctx context.Context, nf model.NewFinding) error {
	nf = store.SanitizeImported(nf)

	s.lock.Lock()
	defer s.lock.Unlock()

	f := s.opts.BuildFinding(nf, s.criticalityOf(nf.AssetID))
	entry := s.opts.Activity(ctx, model.EntityFinding, f.ID, model.ActionImported, store.CreatedDetails(f))
	if err := s.audit(ctx, entry); err != nil {
		return err
	}
	s.findings[f.ID] = f
	return nil
}

func (s *Store) DeleteFinding(ctx context.Context, id string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	f, ok := s.findings[id]
	if !ok {
		return false, nil
	}
	entry := s.opts.Activity(ctx, model.EntityFinding, id, model.ActionDeleted, f.Title)
	if err := s.audit(ctx, entry); err != nil {
		return false, err
	}
	delete(s.findings, id)

	publishMutation(model.EntityFinding, model.ActionDeleted, 1)
	return true, nil
}

func (s *Store) AttachTicket(ctx context.Context, id string, t model.Ticket) (*model.Finding, error) {
	if err := store.ValidateTicket(t); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	f, ok := s.findings[id]
	if !ok {
		return nil, rberr.ErrNotFound
	}
	f = store.CloneFinding(f)
	f.TicketKey = t.Key
	f.TicketStatus = t.Status
	f.TicketURL = t.URL
	f.UpdatedAt = s.opts.Now()

	entry := s.opts.Activity(ctx, model.EntityFinding, id, model.ActionTicketAttached, store.TicketDetails(t))
	if err := s.audit(ctx, entry); err != nil {
		return nil, err
	}
	s.findings[id] = f

	publishMutation(model.EntityFinding, model.ActionTicketAttached, 1)
	return cloned(f), nil
}

// applyPatch stages the patch on a copy of the finding and returns the audit entry describing it. Must be called
// with the write lock held.
func (s *Store) applyPatch(ctx context.Context, f model.Finding, p store.FindingPatch, action model.Action) (model.Finding, model.ActivityLogEntry, error) {
	f = store.CloneFinding(f)
	changed, err := p.Apply(&f, s.opts.Now())
	if err != nil {
		return f, model.ActivityLogEntry{}, err
	}
	before := f.RiskScore
	if p.Rescore {
		f.RiskScore = s.opts.ScoreFinding(f, s.criticalityOf(f.AssetID))
	}
	action, details := store.PatchActivity(action, changed, p.Rescore, before, f.RiskScore)
	return f, s.opts.Activity(ctx, model.EntityFinding, f.ID, action, details), nil
}

// criticalityOf returns the criticality of the referenced asset, or nil when there is no (existing) asset. Must be
// called with a lock held.
func (s *Store) criticalityOf(assetID *string) *model.Criticality {
	if assetID == nil {
		return nil
	}
	a, ok := s.assets[*assetID]
	if !ok {
		return nil
	}
	c := a.Criticality
	return &c
}

func (s *Store) audit(ctx context.Context, entries ...model.ActivityLogEntry) error {
	if _, err := s.recorder.Record(ctx, entries...); err != nil {
		e := &rberr.AuditWriteError{Err: err}
		if len(entries) > 0 {
			e.EntityType = string(entries[0].EntityType)
			e.EntityID = entries[0].EntityID
		}
		return e
	}
	return nil
}

// assets //////////////////////////////////////////////////////

func (s *Store) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	a, ok := s.assets[id]
	if !ok {
		return nil, rberr.ErrNotFound
	}
	return &a, nil
}

func (s *Store) ListAssets(ctx context.Context) ([]model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	out := make([]model.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	s.lock.RUnlock()

	store.SortAssets(out)
	return out, nil
}

func (s *Store) CreateAsset(ctx context.Context, na model.NewAsset) (*model.Asset, error) {
	if err := store.ValidateNewAsset(na); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	a := s.opts.BuildAsset(na)
	entry := s.opts.Activity(ctx, model.EntityAsset, a.ID, model.ActionCreated, store.AssetDetails(a))
	if err := s.audit(ctx, entry); err != nil {
		return nil, err
	}
	s.assets[a.ID] = a

	publishMutation(model.EntityAsset, model.ActionCreated, 1)
	return &a, nil
}

func (s *Store) UpdateAsset(ctx context.Context, id string, p store.AssetPatch) (*model.Asset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	a, ok := s.assets[id]
	if !ok {
		return nil, rberr.ErrNotFound
	}
	changed, err := p.Apply(&a, s.opts.Now())
	if err != nil {
		return nil, err
	}
	entry := s.opts.Activity(ctx, model.EntityAsset, id, model.ActionUpdated, store.Describe(changed))
	if err := s.audit(ctx, entry); err != nil {
		return nil, err
	}
	s.assets[id] = a

	publishMutation(model.EntityAsset, model.ActionUpdated, 1)
	return &a, nil
}

func (s *Store) DeleteAsset(ctx context.Context, id string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	a, ok := s.assets[id]
	if !ok {
		return false, nil
	}
	entry := s.opts.Activity(ctx, model.EntityAsset, id, model.ActionDeleted, a.Name)
	if err := s.audit(ctx, entry); err != nil {
		return false, err
	}
	delete(s.assets, id)

	publishMutation(model.EntityAsset, model.ActionDeleted, 1)
	return true, nil
}

// activity //////////////////////////////////////////////////////

func (s *Store) ListActivity(ctx context.Context, f store.ActivityFilter) ([]model.ActivityLogEntry, error) {
	return s.recorder.List(ctx, f)
}

func publishMutation(entity model.EntityType, action model.Action, count int) {
	bus.PublishMutation(string(entity), string(action), count)
}

// cloned hands out a copy so callers never share pointers with the stored record.
func cloned(f model.Finding) *model.Finding {
	c := store.CloneFinding(f)
	return &c
}
