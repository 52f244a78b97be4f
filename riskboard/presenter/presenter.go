/*
Package presenter renders store results for a terminal or a file in one of several formats.
*/
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/presenter/csv"
	"github.com/anchore/riskboard/riskboard/presenter/json"
	"github.com/anchore/riskboard/riskboard/presenter/table"
	"github.com/anchore/riskboard/riskboard/store"
)

// Presenter writes a rendered document.
type Presenter interface {
	Present(io.Writer) error
}

func unsupported(f Format, what string) error {
	return fmt.Errorf("unsupported output format %q for %s (available: %s)", f, what, strings.Join(FormatNames(), ", "))
}

func ForFindings(f Format, page store.FindingPage) (Presenter, error) {
	switch f {
	case TableFormat:
		return table.NewFindingsPresenter(page), nil
	case JSONFormat:
		return json.NewPresenter(page), nil
	case CSVFormat:
		return csv.NewFindingsPresenter(page.Items), nil
	}
	return nil, unsupported(f, "findings")
}

func ForFinding(f Format, finding model.Finding) (Presenter, error) {
	switch f {
	case TableFormat:
		return table.NewFindingPresenter(finding), nil
	case JSONFormat:
		return json.NewPresenter(finding), nil
	case CSVFormat:
		return csv.NewFindingsPresenter([]model.Finding{finding}), nil
	}
	return nil, unsupported(f, "a finding")
}

func ForSummary(f Format, s metrics.Summary) (Presenter, error) {
	switch f {
	case TableFormat:
		return table.NewSummaryPresenter(s), nil
	case JSONFormat:
		return json.NewPresenter(s.Flatten()), nil
	case CSVFormat:
		return csv.NewSummaryPresenter(s), nil
	}
	return nil, unsupported(f, "metrics")
}

func ForAssets(f Format, assets []model.Asset) (Presenter, error) {
	switch f {
	case TableFormat:
		return table.NewAssetsPresenter(assets), nil
	case JSONFormat:
		return json.NewPresenter(assets), nil
	}
	return nil, unsupported(f, "assets")
}

func ForActivity(f Format, entries []model.ActivityLogEntry) (Presenter, error) {
	switch f {
	case TableFormat:
		return table.NewActivityPresenter(entries), nil
	case JSONFormat:
		return json.NewPresenter(entries), nil
	}
	return nil, unsupported(f, "activity")
}
