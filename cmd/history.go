package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/krishisense/krishi-cli/internal/adapters/render/report"
	"github.com/krishisense/krishi-cli/internal/domain"
)

func newHistoryCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Refresh and display your prediction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.manager.Session() == nil {
				return domain.ErrNotAuthenticated
			}

			refresh := func(ctx context.Context) error {
				return app.manager.RefreshHistory(ctx)
			}

			if asJSON {
				if err := refresh(cmd.Context()); err != nil {
					return err
				}
			} else {
				if err := runTaskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching prediction history...", refresh); err != nil {
					return err
				}
			}

			return writeReport(cmd, app, asJSON, report.RenderHistory)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
