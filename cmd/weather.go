package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krishisense/krishi-cli/internal/domain"
)

func newWeatherCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Fetch current weather for the configured farm location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var snapshot domain.WeatherSnapshot
			fetch := func(ctx context.Context) error {
				var err error
				snapshot, err = app.manager.FetchLocationAndWeather(ctx)
				return err
			}

			if asJSON {
				if err := fetch(cmd.Context()); err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}

			if err := runTaskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching weather...", fetch); err != nil {
				return err
			}

			label := snapshot.LocationLabel
			if label == "" {
				label = "unknown location"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Weather @ %s\n", label)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  temperature: %.1f °C\n", snapshot.TemperatureC)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  humidity:    %.0f %%\n", snapshot.HumidityPct)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  rainfall:    %.1f mm (last hour)\n", snapshot.RainfallMM)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
