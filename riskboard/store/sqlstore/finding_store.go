package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/scylladb/go-set/strset"
	"gorm.io/gorm"

	"github.com/anchore/riskboard/internal/bus"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

type findingStore struct {
	db   *gorm.DB
	opts store.Options
}

func newFindingStore(db *gorm.DB, opts store.Options) *findingStore {
	return &findingStore{
		db:   db,
		opts: opts,
	}
}

func (s *findingStore) GetFinding(ctx context.Context, id string) (*model.Finding, error) {
	log.WithFields("id", id).Trace("fetching finding record")

	var f model.Finding
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, wrap("get finding", err)
	}
	return &f, nil
}

func (s *findingStore) ListFindings(ctx context.Context, filter store.FindingFilter) (*store.FindingPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&model.Finding{})
	if filter.Severity != model.UnknownSeverity {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Status != model.UnknownStatus {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where(`title_search LIKE ? ESCAPE '\'`, "%"+escapeLike(store.SearchKey(filter.Search))+"%")
	}
	if filter.HasTicket != nil {
		if *filter.HasTicket {
			query = query.Where("ticket_key IS NOT NULL AND ticket_key <> ''")
		} else {
			query = query.Where("(ticket_key IS NULL OR ticket_key = '')")
		}
	}
	if filter.Assignee != "" {
		query = query.Where("assignee = ?", filter.Assignee)
	}
	// the count and the page are two statements built from the same conditions
	query = query.Session(&gorm.Session{})

	page := &store.FindingPage{Items: []model.Finding{}}
	if err := query.Count(&page.Total).Error; err != nil {
		return nil, wrap("count findings", err)
	}

	for _, clause := range store.OrderClauses() {
		query = query.Order(clause)
	}
	offset, limit := filter.Window()
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Find(&page.Items).Error; err != nil {
		return nil, wrap("list findings", err)
	}
	return page, nil
}

func (s *findingStore) CreateFinding(ctx context.Context, nf model.NewFinding) (*model.Finding, error) {
	if err := store.ValidateNewFinding(nf); err != nil {
		return nil, err
	}

	f, err := s.create(ctx, nf, model.ActionCreated)
	if err != nil {
		return nil, err
	}

	bus.PublishMutation(string(model.EntityFinding), string(model.ActionCreated), 1)
	return f, nil
}

func (s *findingStore) create(ctx context.Context, nf model.NewFinding, action model.Action) (*model.Finding, error) {
	var f model.Finding
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		crit, err := criticalityOf(tx, nf.AssetID)
		if err != nil {
			return err
		}
		f = s.opts.BuildFinding(nf, crit)
		if err := tx.Create(&f).Error; err != nil {
			return fmt.Errorf("failed to create finding record: %w", err)
		}
		return audit(s.opts.Activity(ctx, model.EntityFinding, f.ID, action, store.CreatedDetails(f)))
	})
	if err != nil {
		return nil, wrap("create finding", err)
	}
	return &f, nil
}

func (s *findingStore) UpdateFinding(ctx context.Context, id string, p store.FindingPatch) (*model.Finding, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var f model.Finding
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		if err := tx.Where("id = ?", id).First(&f).Error; err != nil {
			return err
		}
		entry, err := s.applyPatch(ctx, tx, &f, p, model.ActionUpdated)
		if err != nil {
			return err
		}
		return audit(entry)
	})
	if err != nil {
		return nil, wrap("update finding", err)
	}

	bus.PublishMutation(string(model.EntityFinding), string(model.ActionUpdated), 1)
	return &f, nil
}

func (s *findingStore) BulkUpdateFindings(ctx context.Context, ids []string, p store.FindingPatch) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	unique := strset.New(ids...).List()
	if len(unique) == 0 {
		return 0, nil
	}

	var updated int
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		var findings []model.Finding
		if err := tx.Where("id IN ?", unique).Find(&findings).Error; err != nil {
			return fmt.Errorf("failed to fetch findings for bulk update: %w", err)
		}
		if skipped := len(unique) - len(findings); skipped > 0 {
			log.WithFields("skipped", skipped).Debug("skipping unknown findings in bulk update")
		}

		var entries []model.ActivityLogEntry
		for i := range findings {
			entry, err := s.applyPatch(ctx, tx, &findings[i], p, model.ActionBulkUpdated)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		if len(entries) > 0 {
			if err := audit(entries...); err != nil {
				return err
			}
		}
		updated = len(findings)
		return nil
	})
	if err != nil {
		return 0, wrap("bulk update findings", err)
	}

	if updated > 0 {
		bus.PublishMutation(string(model.EntityFinding), string(model.ActionBulkUpdated), updated)
	}
	return updated, nil
}

func (s *findingStore) ImportFindings(ctx context.Context, nfs []model.NewFinding) (int, error) {
	created, err := store.ImportEach(ctx, nfs, func(nf model.NewFinding) error {
		_, err := s.create(ctx, store.SanitizeImported(nf), model.ActionImported)
		return err
	})
	if created > 0 {
		bus.PublishMutation(string(model.EntityFinding), string(model.ActionImported), created)
	}
	return created, err
}

func (s *findingStore) DeleteFinding(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		var existing []model.Finding
		if err := tx.Where("id = ?", id).Limit(1).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to fetch finding: %w", err)
		}
		if len(existing) == 0 {
			return nil
		}
		if err := tx.Delete(&model.Finding{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete finding: %w", err)
		}
		deleted = true
		return audit(s.opts.Activity(ctx, model.EntityFinding, id, model.ActionDeleted, existing[0].Title))
	})
	if err != nil {
		return false, wrap("delete finding", err)
	}

	if deleted {
		bus.PublishMutation(string(model.EntityFinding), string(model.ActionDeleted), 1)
	}
	return deleted, nil
}

func (s *findingStore) AttachTicket(ctx context.Context, id string, t model.Ticket) (*model.Finding, error) {
	if err := store.ValidateTicket(t); err != nil {
		return nil, err
	}

	var f model.Finding
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		if err := tx.Where("id = ?", id).First(&f).Error; err != nil {
			return err
		}
		f.TicketKey = t.Key
		f.TicketStatus = t.Status
		f.TicketURL = t.URL
		f.UpdatedAt = s.opts.Now()
		if err := tx.Save(&f).Error; err != nil {
			return fmt.Errorf("failed to save ticket reference: %w", err)
		}
		return audit(s.opts.Activity(ctx, model.EntityFinding, id, model.ActionTicketAttached, store.TicketDetails(t)))
	})
	if err != nil {
		return nil, wrap("attach ticket", err)
	}

	bus.PublishMutation(string(model.EntityFinding), string(model.ActionTicketAttached), 1)
	return &f, nil
}

// applyPatch applies and saves the patch inside the transaction, returning the audit entry describing it.
func (s *findingStore) applyPatch(ctx context.Context, tx *gorm.DB, f *model.Finding, p store.FindingPatch, action model.Action) (model.ActivityLogEntry, error) {
	changed, err := p.Apply(f, s.opts.Now())
	if err != nil {
		return model.ActivityLogEntry{}, err
	}
	before := f.RiskScore
	if p.Rescore {
		crit, err := criticalityOf(tx, f.AssetID)
		if err != nil {
			return model.ActivityLogEntry{}, err
		}
		f.RiskScore = s.opts.ScoreFinding(*f, crit)
	}
	if err := tx.Save(f).Error; err != nil {
		return model.ActivityLogEntry{}, fmt.Errorf("failed to save finding %q: %w", f.ID, err)
	}
	action, details := store.PatchActivity(action, changed, p.Rescore, before, f.RiskScore)
	return s.opts.Activity(ctx, model.EntityFinding, f.ID, action, details), nil
}

// criticalityOf looks up the referenced asset; a missing or dangling reference yields no criticality.
func criticalityOf(tx *gorm.DB, assetID *string) (*model.Criticality, error) {
	if assetID == nil {
		return nil, nil
	}
	var assets []model.Asset
	if err := tx.Where("id = ?", *assetID).Limit(1).Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch asset %q: %w", *assetID, err)
	}
	if len(assets) == 0 {
		return nil, nil
	}
	c := assets[0].Criticality
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
