package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/presenter"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/store"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "manage the assets findings are scored against",
}

var newAsset model.NewAsset

var assetAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "register an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		na := newAsset
		na.Name = args[0]
		na.Category = model.AssetCategory(strings.ToLower(strings.TrimSpace(string(na.Category))))
		na.Criticality = model.Criticality(strings.ToLower(strings.TrimSpace(string(na.Criticality))))
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			a, err := s.CreateAsset(ctx, na)
			if err != nil {
				return nil, fmt.Errorf("unable to add asset: %w", err)
			}
			return presenter.ForAssets(appConfig.OutputFormat, []model.Asset{*a})
		})
	},
}

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "list assets by name",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			assets, err := s.ListAssets(ctx)
			if err != nil {
				return nil, err
			}
			return presenter.ForAssets(appConfig.OutputFormat, assets)
		})
	},
}

var assetDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "remove an asset (findings keep referring to its id)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			deleted, err := s.DeleteAsset(ctx, args[0])
			if err != nil {
				return nil, fmt.Errorf("unable to delete asset %q: %w", args[0], err)
			}
			if !deleted {
				return nil, fmt.Errorf("unable to delete asset %q: %w", args[0], rberr.ErrNotFound)
			}
			return outcomePresenter(appConfig.OutputFormat, map[string]string{"deleted": args[0]},
				"deleted asset %s", args[0]), nil
		})
	},
}

func init() {
	flags := assetAddCmd.Flags()
	flags.StringVar((*string)(&newAsset.Category), "category", string(model.AssetCategoryServer), "kind of asset (server, workstation, network_device, application, database, cloud_resource, container, other)")
	flags.StringVar((*string)(&newAsset.Criticality), "criticality", string(model.CriticalityMedium), "business criticality (critical, high, medium, low)")
	flags.StringVar(&newAsset.Environment, "environment", "", "deployment environment, e.g. production")
	flags.StringVar(&newAsset.Hostname, "hostname", "", "hostname of the asset")
	flags.StringVar(&newAsset.IPAddress, "ip", "", "IP address of the asset")

	assetCmd.AddCommand(assetAddCmd, assetListCmd, assetDeleteCmd)
	rootCmd.AddCommand(assetCmd)
}
