package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krishisense/krishi-cli/internal/domain"
)

func newPredictCmd(app *app) *cobra.Command {
	var params domain.Parameters
	var useWeather bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit soil readings and get a crop recommendation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if useWeather {
				prefillFromWeather(cmd, app, &params)
			}

			var record domain.Prediction
			submit := func(ctx context.Context) error {
				var err error
				record, err = app.manager.SubmitPrediction(ctx, params)
				return err
			}

			if asJSON {
				if err := submit(cmd.Context()); err != nil {
					return err
				}
			} else {
				if err := runTaskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Asking for a recommendation...", submit); err != nil {
					return err
				}
			}

			// Optimistic insert: show the new record immediately; the next
			// history refresh replaces the list with the backend's.
			app.manager.InsertPredictionLocally(record)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(record)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recommended crop: %s (%.0f%% confidence)\n", record.Crop, record.ConfidencePercent)
			return nil
		},
	}

	cmd.Flags().Float64Var(&params.Nitrogen, "nitrogen", 0, "Soil nitrogen (kg/ha)")
	cmd.Flags().Float64Var(&params.Phosphorus, "phosphorus", 0, "Soil phosphorus (kg/ha)")
	cmd.Flags().Float64Var(&params.Potassium, "potassium", 0, "Soil potassium (kg/ha)")
	cmd.Flags().Float64Var(&params.Temperature, "temperature", 0, "Air temperature (°C)")
	cmd.Flags().Float64Var(&params.Humidity, "humidity", 0, "Relative humidity (%)")
	cmd.Flags().Float64Var(&params.PH, "ph", 0, "Soil pH")
	cmd.Flags().Float64Var(&params.Rainfall, "rainfall", 0, "Rainfall (mm)")
	cmd.Flags().StringVar(&params.SoilName, "soil-name", "", "Soil type name (optional)")
	cmd.Flags().BoolVar(&useWeather, "use-weather", false, "Pre-fill temperature/humidity/rainfall from the weather snapshot")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// prefillFromWeather fills weather-derived fields the user did not set. A
// failed fetch is reported but never blocks the submission; the fields just
// stay at their caller-supplied or zero values.
func prefillFromWeather(cmd *cobra.Command, app *app, params *domain.Parameters) {
	snapshot, err := app.manager.FetchLocationAndWeather(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrLocationUnavailable) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Farm location not configured; submitting without weather pre-fill")
		} else {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Weather fetch failed (%v); submitting without weather pre-fill\n", err)
		}
		return
	}

	if !cmd.Flags().Changed("temperature") {
		params.Temperature = snapshot.TemperatureC
	}
	if !cmd.Flags().Changed("humidity") {
		params.Humidity = snapshot.HumidityPct
	}
	if !cmd.Flags().Changed("rainfall") {
		params.Rainfall = snapshot.RainfallMM
	}
}
