package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "krishi",
		Short:         "krishi: crop recommendations for your farm from the terminal",
		Long:          "krishi records soil and weather readings, submits them to the crop-recommendation backend, and keeps your session and prediction history at hand.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	// The persisted session is restored before any command body runs; a
	// missing session is simply the logged-out state.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.manager.Restore(cmd.Context())
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newSignupCmd(app),
		newLogoutCmd(app),
		newStatusCmd(app),
		newPredictCmd(app),
		newHistoryCmd(app),
		newWeatherCmd(app),
	)

	return rootCmd
}
