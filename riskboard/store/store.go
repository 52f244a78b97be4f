/*
Package store defines the contract for the authoritative collection of findings and assets. Two interchangeable
backends implement it: store/memory (process memory) and store/sqlstore (gorm over sqlite).

Every mutation that changes observable state writes exactly one activity entry per affected entity, atomically with
the change itself: if the audit write fails the change is rolled back and an *rberr.AuditWriteError is returned.
*/
package store

import (
	"context"
	"io"

	"github.com/anchore/riskboard/riskboard/model"
)

type FindingStoreReader interface {
	// GetFinding returns rberr.ErrNotFound when no finding has the given id.
	GetFinding(ctx context.Context, id string) (*model.Finding, error)
	// ListFindings returns the page of findings matching the filter in priority order, plus the unpaginated total.
	ListFindings(ctx context.Context, f FindingFilter) (*FindingPage, error)
}

type FindingStoreWriter interface {
	CreateFinding(ctx context.Context, nf model.NewFinding) (*model.Finding, error)
	UpdateFinding(ctx context.Context, id string, p FindingPatch) (*model.Finding, error)
	// BulkUpdateFindings applies the patch to every known id in one transaction, skipping unknown ids, and returns
	// how many findings were updated.
	BulkUpdateFindings(ctx context.Context, ids []string, p FindingPatch) (int, error)
	// ImportFindings creates each record independently and returns how many were created. A record that fails on its
	// own is skipped; a store or audit failure stops the import and is returned with the count created so far.
	ImportFindings(ctx context.Context, nfs []model.NewFinding) (int, error)
	DeleteFinding(ctx context.Context, id string) (bool, error)
	// AttachTicket is the only way ticket fields are set on a finding.
	AttachTicket(ctx context.Context, id string, t model.Ticket) (*model.Finding, error)
}

type AssetStoreReader interface {
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	ListAssets(ctx context.Context) ([]model.Asset, error)
}

type AssetStoreWriter interface {
	CreateAsset(ctx context.Context, na model.NewAsset) (*model.Asset, error)
	UpdateAsset(ctx context.Context, id string, p AssetPatch) (*model.Asset, error)
	// DeleteAsset is a hard delete; findings referencing the asset keep their (now dangling) asset id.
	DeleteAsset(ctx context.Context, id string) (bool, error)
}

type ActivityStoreReader interface {
	ListActivity(ctx context.Context, f ActivityFilter) ([]model.ActivityLogEntry, error)
}

type Reader interface {
	FindingStoreReader
	AssetStoreReader
	ActivityStoreReader
}

type Writer interface {
	FindingStoreWriter
	AssetStoreWriter
}

type Store interface {
	Reader
	Writer
	io.Closer
}
