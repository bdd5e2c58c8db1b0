package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/haggle/internal/application"
)

func newCredentialsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the classifier API key in the secret store",
	}

	cmd.AddCommand(
		newCredentialsSetCmd(app),
		newCredentialsGetCmd(app),
		newCredentialsRemoveCmd(app),
	)

	return cmd
}

func newCredentialsSetCmd(app *app) *cobra.Command {
	var ref string
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the classifier API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := refFlagOrConfig(ref, app)
			if err := app.credentials.Set(cmd.Context(), target, value); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", target)
			return err
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Secret reference (default: classifier.api_key_ref)")
	cmd.Flags().StringVar(&value, "value", "", "Secret value")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newCredentialsGetCmd(app *app) *cobra.Command {
	var ref string
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the stored classifier API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := refFlagOrConfig(ref, app)
			value, err := app.credentials.Get(cmd.Context(), target)
			if err != nil {
				if errors.Is(err, application.ErrCredentialMissing) {
					return fmt.Errorf("%s: %w", target, err)
				}
				return err
			}
			if !reveal {
				value = maskSecret(value)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Secret reference (default: classifier.api_key_ref)")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the full secret")

	return cmd
}

func newCredentialsRemoveCmd(app *app) *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"remove"},
		Short:   "Delete the stored classifier API key",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := refFlagOrConfig(ref, app)
			if err := app.credentials.Remove(cmd.Context(), target); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", target)
			return err
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Secret reference (default: classifier.api_key_ref)")

	return cmd
}

func refFlagOrConfig(ref string, app *app) string {
	if strings.TrimSpace(ref) != "" {
		return strings.TrimSpace(ref)
	}
	return app.cfg.Classifier.APIKeyRef
}

// maskSecret keeps the last four characters.
func maskSecret(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
