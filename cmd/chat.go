package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/revisionai/internal/adapters/relayclient"
	"github.com/spf13/cobra"
)

func newChatCmd(app *app) *cobra.Command {
	var relayURL string
	var temperature float64
	var maxOutputTokens int

	cmd := &cobra.Command{
		Use:   "chat <session-id> <message...>",
		Short: "Ask the tutor a question within a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			options := map[string]any{}
			if cmd.Flags().Changed("temperature") {
				options["temperature"] = temperature
			}
			if cmd.Flags().Changed("max-output-tokens") {
				options["max_output_tokens"] = maxOutputTokens
			}

			_, request, err := app.service.Send(cmd.Context(), id, strings.Join(args[1:], " "), options)
			if err != nil {
				return err
			}

			client := relayclient.NewClient(relayURL, app.httpClient)
			out := cmd.OutOrStdout()

			var reply string
			if app.isTerminal(out) {
				err = runReplyProgress(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, onDelta func(string)) error {
					var streamErr error
					reply, streamErr = client.Stream(ctx, request, onDelta)
					return streamErr
				})
				if err == nil {
					_, err = fmt.Fprintln(out, reply)
				}
			} else {
				reply, err = client.Stream(cmd.Context(), request, deltaWriter(out))
				if err == nil {
					_, err = fmt.Fprintln(out)
				}
			}
			if err != nil {
				return fmt.Errorf("stream tutor reply: %w", err)
			}

			if strings.TrimSpace(reply) == "" {
				_, err := fmt.Fprintln(cmd.ErrOrStderr(), "tutor sent an empty reply; nothing recorded")
				return err
			}

			if _, err := app.service.RecordReply(cmd.Context(), id, reply); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&relayURL, "relay-url", app.config.Client.RelayURL, "Relay chat endpoint")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature forwarded to the model")
	cmd.Flags().IntVar(&maxOutputTokens, "max-output-tokens", 0, "Upper bound on reply tokens")

	return cmd
}

func deltaWriter(w io.Writer) func(string) {
	return func(delta string) {
		_, _ = io.WriteString(w, delta)
	}
}
