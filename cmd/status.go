package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krishisense/krishi-cli/internal/adapters/render/report"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session and weather context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeReport(cmd, app, asJSON, report.RenderStatus)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeReport(cmd *cobra.Command, app *app, asJSON bool, render func(report.Report, report.RenderOptions) (string, error)) error {
	current := report.Report{
		Session:     app.manager.Session(),
		Predictions: app.manager.Predictions(),
		Weather:     app.manager.Weather(),
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(current)
	}

	rendered, err := render(current, report.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
