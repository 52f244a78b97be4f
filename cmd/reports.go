package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/presenter"
	"github.com/anchore/riskboard/riskboard/store"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "summarize findings by status, severity and age",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			summary, err := metrics.NewAggregator(s, nil).Summarize(ctx)
			if err != nil {
				return nil, err
			}
			return presenter.ForSummary(appConfig.OutputFormat, summary)
		})
	},
}

var activityOpts store.ActivityFilter

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "show the activity log, newest first",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		filter := activityOpts
		switch filter.EntityType {
		case "", model.EntityFinding, model.EntityAsset:
		default:
			return fmt.Errorf("bad --entity-type %q (available: %s, %s)", filter.EntityType, model.EntityFinding, model.EntityAsset)
		}
		if filter.Limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			entries, err := s.ListActivity(ctx, filter)
			if err != nil {
				return nil, err
			}
			return presenter.ForActivity(appConfig.OutputFormat, entries)
		})
	},
}

func init() {
	activityCmd.Flags().StringVar((*string)(&activityOpts.EntityType), "entity-type", "", "only entries for this kind of entity (finding, asset)")
	activityCmd.Flags().StringVar(&activityOpts.EntityID, "entity-id", "", "only entries for this entity")
	activityCmd.Flags().IntVar(&activityOpts.Limit, "limit", 50, "show at most this many entries (0 for all)")

	rootCmd.AddCommand(metricsCmd, activityCmd)
}
