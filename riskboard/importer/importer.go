/*
Package importer feeds batches of loosely-typed rows (typically a scanner's CSV export) through the normalizer and
into a store, reporting progress on the event bus.
*/
package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/anchore/riskboard/internal/bus"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/event"
	"github.com/anchore/riskboard/riskboard/event/monitor"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/normalize"
	"github.com/anchore/riskboard/riskboard/store"
)

const defaultChunkSize = 100

type Importer struct {
	writer    store.FindingStoreWriter
	chunkSize int
}

func New(writer store.FindingStoreWriter) *Importer {
	return &Importer{
		writer:    writer,
		chunkSize: defaultChunkSize,
	}
}

// WithChunkSize sets how many rows are handed to the store per call (and so how often progress moves).
func (i *Importer) WithChunkSize(n int) *Importer {
	if n > 0 {
		i.chunkSize = n
	}
	return i
}

// Result summarizes a finished import.
type Result struct {
	Rows    int `json:"rows"`
	Created int `json:"created"`
}

func (r Result) Skipped() int {
	return r.Rows - r.Created
}

// ImportCSV reads and imports every record of a CSV document.
func (i *Importer) ImportCSV(ctx context.Context, reader io.Reader) (Result, error) {
	rows, err := ReadCSV(reader)
	if err != nil {
		return Result{}, err
	}
	return i.Import(ctx, rows)
}

// Import normalizes the rows and stores them in chunks. A row never aborts the import; only a canceled context or
// an unusable store does.
func (i *Importer) Import(ctx context.Context, rows []normalize.Row) (Result, error) {
	processed, created := trackImport(len(rows))
	defer processed.SetCompleted()
	defer created.SetCompleted()

	result := Result{Rows: len(rows)}
	log.WithFields("rows", len(rows)).Info("importing findings")

	for start := 0; start < len(rows); start += i.chunkSize {
		end := start + i.chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		count, err := i.writer.ImportFindings(ctx, normalize.Findings(rows[start:end]))
		result.Created += count
		created.Add(int64(count))
		processed.Add(int64(end - start))
		if err != nil {
			processed.SetError(err)
			return result, fmt.Errorf("failed to import findings (rows %d-%d): %w", start+1, end, err)
		}
	}

	if skipped := result.Skipped(); skipped > 0 {
		log.WithFields("skipped", skipped).Warn("some findings could not be imported")
	}
	log.WithFields("created", result.Created).Debug("import complete")
	return result, nil
}

// ImportRecords stores already-shaped records (for example a JSON payload) with the same best-effort semantics.
func (i *Importer) ImportRecords(ctx context.Context, nfs []model.NewFinding) (Result, error) {
	processed, created := trackImport(len(nfs))
	defer processed.SetCompleted()
	defer created.SetCompleted()

	count, err := i.writer.ImportFindings(ctx, nfs)
	processed.Add(int64(len(nfs)))
	created.Add(int64(count))
	if err != nil {
		return Result{Rows: len(nfs), Created: count}, fmt.Errorf("failed to import findings: %w", err)
	}
	return Result{Rows: len(nfs), Created: count}, nil
}

func trackImport(total int) (*progress.Manual, *progress.Manual) {
	processed := progress.NewManual(int64(total))
	created := progress.NewManual(int64(total))

	bus.Publish(partybus.Event{
		Type: event.FindingImportStarted,
		Value: monitor.Import{
			RowsProcessed: progress.Monitorable(processed),
			RowsCreated:   progress.Monitorable(created),
		},
	})
	return processed, created
}
