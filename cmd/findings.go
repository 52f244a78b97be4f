package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anchore/riskboard/riskboard/presenter"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/store"
	"github.com/anchore/riskboard/riskboard/ticket"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list findings, highest risk first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := findingFilterFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			page, err := s.ListFindings(ctx, filter)
			if err != nil {
				return nil, err
			}
			return presenter.ForFindings(appConfig.OutputFormat, *page)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "show a single finding",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			f, err := s.GetFinding(ctx, args[0])
			if err != nil {
				return nil, fmt.Errorf("unable to get finding %q: %w", args[0], err)
			}
			return presenter.ForFinding(appConfig.OutputFormat, *f)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "change fields of a finding",
	Long: `Only the given flags are changed. The risk score is kept as computed at creation unless --rescore is given.
A resolved finding that is reopened keeps its resolution time unless --clear-resolved is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := findingPatchFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			f, err := s.UpdateFinding(ctx, args[0], patch)
			if err != nil {
				return nil, fmt.Errorf("unable to update finding %q: %w", args[0], err)
			}
			return presenter.ForFinding(appConfig.OutputFormat, *f)
		})
	},
}

var bulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update ID...",
	Short: "apply the same change to several findings at once",
	Long:  "Unknown ids are skipped; the number of updated findings is reported.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := findingPatchFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			count, err := s.BulkUpdateFindings(ctx, args, patch)
			if err != nil {
				return nil, fmt.Errorf("unable to update findings: %w", err)
			}
			return outcomePresenter(appConfig.OutputFormat, map[string]int{"updated": count},
				"updated %d of %d findings", count, len(args)), nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "permanently remove a finding (its activity history is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			deleted, err := s.DeleteFinding(ctx, args[0])
			if err != nil {
				return nil, fmt.Errorf("unable to delete finding %q: %w", args[0], err)
			}
			if !deleted {
				return nil, fmt.Errorf("unable to delete finding %q: %w", args[0], rberr.ErrNotFound)
			}
			return outcomePresenter(appConfig.OutputFormat, map[string]string{"deleted": args[0]},
				"deleted finding %s", args[0]), nil
		})
	},
}

var ticketCmd = &cobra.Command{
	Use:   "ticket ID",
	Short: "open a remediation ticket for a finding",
	Long:  "A finding that already has a ticket keeps it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s store.Store) (presenter.Presenter, error) {
			creator, err := ticketCreator(ctx, s)
			if err != nil {
				return nil, err
			}
			f, err := ticket.Open(ctx, s, creator, args[0])
			if err != nil {
				return nil, fmt.Errorf("unable to open ticket for finding %q: %w", args[0], err)
			}
			return presenter.ForFinding(appConfig.OutputFormat, *f)
		})
	},
}

// ticketCreator continues key numbering after every ticket ever issued, since each CLI run starts a new issuer.
func ticketCreator(ctx context.Context, s store.ActivityStoreReader) (*ticket.Stub, error) {
	creator, err := ticket.NewStub(appConfig.Ticket.Config).Resume(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("unable to continue ticket numbering: %w", err)
	}
	return creator, nil
}

func init() {
	addFindingFilterFlags(listCmd.Flags())
	addFindingPatchFlags(updateCmd.Flags())
	addFindingPatchFlags(bulkUpdateCmd.Flags())

	rootCmd.AddCommand(listCmd, showCmd, updateCmd, bulkUpdateCmd, deleteCmd, ticketCmd)
}
