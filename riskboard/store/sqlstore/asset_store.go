package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/anchore/riskboard/internal/bus"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

type assetStore struct {
	db   *gorm.DB
	opts store.Options
}

func newAssetStore(db *gorm.DB, opts store.Options) *assetStore {
	return &assetStore{
		db:   db,
		opts: opts,
	}
}

func (s *assetStore) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	log.WithFields("id", id).Trace("fetching asset record")

	var a model.Asset
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, wrap("get asset", err)
	}
	return &a, nil
}

func (s *assetStore) ListAssets(ctx context.Context) ([]model.Asset, error) {
	log.Trace("fetching all asset records")

	assets := []model.Asset{}
	if err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&assets).Error; err != nil {
		return nil, wrap("list assets", err)
	}
	return assets, nil
}

func (s *assetStore) CreateAsset(ctx context.Context, na model.NewAsset) (*model.Asset, error) {
	if err := store.ValidateNewAsset(na); err != nil {
		return nil, err
	}

	a := s.opts.BuildAsset(na)
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		if err := tx.Create(&a).Error; err != nil {
			return fmt.Errorf("failed to create asset record: %w", err)
		}
		return audit(s.opts.Activity(ctx, model.EntityAsset, a.ID, model.ActionCreated, store.AssetDetails(a)))
	})
	if err != nil {
		return nil, wrap("create asset", err)
	}

	bus.PublishMutation(string(model.EntityAsset), string(model.ActionCreated), 1)
	return &a, nil
}

func (s *assetStore) UpdateAsset(ctx context.Context, id string, p store.AssetPatch) (*model.Asset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var a model.Asset
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
			return err
		}
		changed, err := p.Apply(&a, s.opts.Now())
		if err != nil {
			return err
		}
		if err := tx.Save(&a).Error; err != nil {
			return fmt.Errorf("failed to save asset %q: %w", id, err)
		}
		return audit(s.opts.Activity(ctx, model.EntityAsset, id, model.ActionUpdated, store.Describe(changed)))
	})
	if err != nil {
		return nil, wrap("update asset", err)
	}

	bus.PublishMutation(string(model.EntityAsset), string(model.ActionUpdated), 1)
	return &a, nil
}

// DeleteAsset removes the asset only; findings that reference it are left alone.
func (s *assetStore) DeleteAsset(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := withTx(ctx, s.db, s.opts, func(tx *gorm.DB, audit auditFunc) error {
		var existing []model.Asset
		if err := tx.Where("id = ?", id).Limit(1).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to fetch asset: %w", err)
		}
		if len(existing) == 0 {
			return nil
		}
		if err := tx.Delete(&model.Asset{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
		deleted = true
		return audit(s.opts.Activity(ctx, model.EntityAsset, id, model.ActionDeleted, existing[0].Name))
	})
	if err != nil {
		return false, wrap("delete asset", err)
	}

	if deleted {
		bus.PublishMutation(string(model.EntityAsset), string(model.ActionDeleted), 1)
	}
	return deleted, nil
}
