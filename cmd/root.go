package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/anchore/riskboard/internal"
	"github.com/anchore/riskboard/internal/config"
	"github.com/anchore/riskboard/riskboard/presenter"
)

var persistentOpts = config.CliOnlyOptions{}

var actor string

var rootCmd = &cobra.Command{
	Use:   internal.ApplicationName,
	Short: "Prioritize vulnerability findings by risk and track them to resolution",
	Long: fmt.Sprintf(`Findings are scored from their severity, exploit availability, the criticality of the affected
asset and their age, then listed highest risk first. Examples:

    %[1]s import scan.csv          load scanner output
    %[1]s list --limit 10          show the ten riskiest findings
    %[1]s update ID --status resolved
    %[1]s serve                    expose the same operations over HTTP
`, internal.ApplicationName),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&persistentOpts.ConfigPath, "config", "c", "", "application config file")
	rootCmd.PersistentFlags().CountVarP(&persistentOpts.Verbosity, "verbose", "v", "increase verbosity (-v = info, -vv = debug)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "name recorded on activity entries (default: $USER)")

	if err := bindRootConfigOptions(rootCmd.PersistentFlags()); err != nil {
		fmt.Printf("unable to bind root config options: %+v\n", err)
		os.Exit(1)
	}
}

func bindRootConfigOptions(flags *pflag.FlagSet) error {
	flags.BoolP(
		"quiet", "q", false,
		"suppress all logging output",
	)

	flags.StringP(
		"output", "o", presenter.TableFormat.String(),
		fmt.Sprintf("output format to present results in (available: %s)", strings.Join(presenter.FormatNames(), ", ")),
	)

	flags.StringP(
		"file", "", "",
		"file to write the output to (default is STDOUT)",
	)

	flags.StringP(
		"db-backend", "", "",
		"backing store to use (sqlite, memory)",
	)

	flags.StringP(
		"db-path", "", "",
		"location of the sqlite database file",
	)

	bindings := map[string]string{
		"quiet":      "quiet",
		"output":     "output",
		"file":       "file",
		"db.backend": "db-backend",
		"db.path":    "db-path",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("unable to bind flag %q: %w", flag, err)
		}
	}
	return nil
}
