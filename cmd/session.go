package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/revisionai/internal/adapters/export"
	sessionsrender "github.com/bnema/revisionai/internal/adapters/render/sessions"
	"github.com/spf13/cobra"
)

const stdoutPath = "-"

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage revision sessions",
	}

	cmd.AddCommand(
		newSessionNewCmd(app),
		newSessionListCmd(app),
		newSessionShowCmd(app),
		newSessionRenameCmd(app),
		newSessionDeleteCmd(app),
		newSessionClearCmd(app),
		newSessionExportCmd(app),
	)

	return cmd
}

func newSessionNewCmd(app *app) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new session with the tutor greeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.service.Start(cmd.Context(), title)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", session.ID, session.Title)
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Session title (default: inferred from the first question)")

	return cmd
}

func newSessionListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := app.service.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, summaries)
			}

			rendered, err := app.listRenderer(summaries, sessionsrender.RenderOptions{Now: app.now()})
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSessionShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			session, err := app.service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if asJSON {
				return export.Write(cmd.OutOrStdout(), session, export.FormatJSON)
			}

			rendered, err := app.showRenderer(session, sessionsrender.RenderOptions{Now: app.now()})
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSessionRenameCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <session-id> <title...>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			session, err := app.service.Rename(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %q\n", session.ID, session.Title)
			return err
		},
	}
}

func newSessionDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <session-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			if err := app.service.Delete(cmd.Context(), id); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return err
		},
	}
}

func newSessionClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Reset a session to the tutor greeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			session, err := app.service.Clear(cmd.Context(), id)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", session.ID)
			return err
		},
	}
}

func newSessionExportCmd(app *app) *cobra.Command {
	var rawFormat string
	var output string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(rawFormat)
			if err != nil {
				return err
			}

			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			session, err := app.service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if output == stdoutPath {
				return export.Write(cmd.OutOrStdout(), session, format)
			}
			if output == "" {
				output = export.FileName(session.Title, format)
			}

			data, err := export.Marshal(session, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", session.ID, output)
			return err
		},
	}

	cmd.Flags().StringVar(&rawFormat, "format", string(export.FormatJSON), "Export format (json|yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, - for stdout (default: file named after the title)")

	return cmd
}
