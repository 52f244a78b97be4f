package activity

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/anchore/riskboard/riskboard/model"
)

var _ Recorder = (*GormRecorder)(nil)

// GormRecorder writes entries through the given handle. When the handle is a transaction the entries commit (or roll
// back) together with the mutation they describe.
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(ctx context.Context, entries ...model.ActivityLogEntry) ([]model.ActivityLogEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make([]model.ActivityLogEntry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].ID = 0
	}
	if err := r.db.WithContext(ctx).Create(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to write activity entries: %w", err)
	}
	return out, nil
}

func (r *GormRecorder) List(ctx context.Context, f Filter) ([]model.ActivityLogEntry, error) {
	query := r.db.WithContext(ctx).Model(&model.ActivityLogEntry{})
	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		query = query.Where("entity_id = ?", f.EntityID)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var entries []model.ActivityLogEntry
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	return entries, nil
}
