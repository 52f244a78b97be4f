package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anchore/riskboard/internal/server"
	"github.com/anchore/riskboard/riskboard/presenter"
	"github.com/anchore/riskboard/riskboard/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the findings API over HTTP until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			creator, err := ticketCreator(ctx, s)
			if err != nil {
				return nil, err
			}
			srv := server.New(server.Config{Address: appConfig.Server.Address}, s, creator)
			return nil, srv.Run(ctx)
		})
	},
}

func init() {
	serveCmd.Flags().StringP("address", "a", "", "host:port to listen on (default from server.address)")
	if err := viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd)
}
