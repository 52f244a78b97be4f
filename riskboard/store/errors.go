package store

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
)

// RowError ties an import failure to the position of the record in the batch.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// AbortsImport reports whether an import failure concerns the store rather than the record: the backend failed or
// the activity log could not be written. Such failures stop the import instead of skipping the row.
func AbortsImport(err error) bool {
	return rberr.IsStore(err) || rberr.IsAuditWrite(err)
}

// ImportEach stores every record with importOne. A record that fails on its own is skipped; the skipped rows are
// logged together. A store or audit failure stops the import and is returned with the count created so far.
func ImportEach(ctx context.Context, nfs []model.NewFinding, importOne func(model.NewFinding) error) (int, error) {
	var (
		created int
		skipped *multierror.Error
	)
	defer func() {
		if skipped != nil {
			log.WithFields("skipped", skipped.Len()).Debugf("import skipped rows: %v", skipped)
		}
	}()

	for i, nf := range nfs {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		if err := importOne(nf); err != nil {
			rowErr := &RowError{Row: i, Err: err}
			if AbortsImport(err) {
				return created, rowErr
			}
			skipped = multierror.Append(skipped, rowErr)
			continue
		}
		created++
	}
	return created, nil
}
