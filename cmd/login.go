package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your krishi account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			if err := app.manager.SignIn(cmd.Context(), email, resolved); err != nil {
				return err
			}

			session := app.manager.Session()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", session.User.Name, session.User.Email)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d prediction(s) from history\n", len(app.manager.Predictions()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newSignupCmd(app *app) *cobra.Command {
	var name string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new krishi account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			if err := app.manager.SignUp(cmd.Context(), name, email, resolved); err != nil {
				return err
			}

			session := app.manager.Session()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in as %s\n", session.User.Name, session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.manager.Logout(cmd.Context())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func resolvePassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
