package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anchore/riskboard/internal"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/importer"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/presenter"
	"github.com/anchore/riskboard/riskboard/store"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "import findings from a scanner export (CSV, or a JSON array of findings; use - for stdin)",
	Long: `Rows are normalized leniently: missing titles become "Untitled Finding", unknown severities become medium
and malformed numbers are dropped. Every row that can be stored is stored; the count of created findings is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, err := cmd.Flags().GetBool("reset")
		if err != nil {
			return err
		}
		appConfig.DB.Reset = reset
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			res, err := importFile(ctx, importer.New(s), args[0])
			if err != nil {
				return nil, err
			}
			return outcomePresenter(appConfig.OutputFormat, res,
				"imported %d of %d rows (%d skipped)", res.Created, res.Rows, res.Skipped()), nil
		})
	},
}

func init() {
	importCmd.Flags().Bool("reset", false, "discard every existing finding, asset and activity entry before importing (sqlite backend)")
	rootCmd.AddCommand(importCmd)
}

func importFile(ctx context.Context, imp *importer.Importer, path string) (importer.Result, error) {
	var reader io.Reader
	if path == "-" {
		piped, err := internal.IsPipedInput()
		if err != nil {
			return importer.Result{}, err
		}
		if !piped {
			return importer.Result{}, fmt.Errorf("no input piped to stdin")
		}
		reader = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return importer.Result{}, fmt.Errorf("unable to open import file: %w", err)
		}
		defer log.CloseAndLogError(f, path)
		reader = f
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var nfs []model.NewFinding
		if err := json.NewDecoder(reader).Decode(&nfs); err != nil {
			return importer.Result{}, fmt.Errorf("unable to decode findings from %q: %w", path, err)
		}
		return imp.ImportRecords(ctx, nfs)
	}
	return imp.ImportCSV(ctx, reader)
}
