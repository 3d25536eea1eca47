package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the upstream credential used by the relay",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRemoveCmd(app), newAuthStatusCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var secretValue string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the upstream API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value := strings.TrimSpace(secretValue)
			if value == "" {
				return errors.New("secret value is empty")
			}

			ref := app.config.Upstream.SecretRef
			if err := app.secretStore.Put(cmd.Context(), ref, value); err != nil {
				return fmt.Errorf("store upstream credential: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stored credential %s\n", ref)
			return err
		},
	}

	cmd.Flags().StringVar(&secretValue, "secret-value", "", "Secret value")
	_ = cmd.MarkFlagRequired("secret-value")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored upstream API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := app.config.Upstream.SecretRef
			if err := app.secretStore.Delete(cmd.Context(), ref); err != nil {
				return fmt.Errorf("remove upstream credential: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed credential %s\n", ref)
			return err
		},
	}
}

func newAuthStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the upstream API key is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := app.config.Upstream.SecretRef
			state := "configured"

			_, err := app.secretStore.Get(cmd.Context(), ref)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrSecretNotFound):
				state = "missing"
			default:
				return fmt.Errorf("check upstream credential: %w", err)
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "credential: %s\nsecret ref: %s\n", state, ref); err != nil {
				return err
			}

			if env := app.config.Upstream.CredentialEnv; env != "" {
				source := "unset"
				if strings.TrimSpace(os.Getenv(env)) != "" {
					source = "set"
				}
				if _, err := fmt.Fprintf(out, "env %s: %s\n", env, source); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
