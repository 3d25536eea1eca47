package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/bnema/revisionai/internal/adapters/http"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the streaming chat relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", listen, err)
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "relay listening on http://%s%s\n", listener.Addr(), httpadapter.ChatPath); err != nil {
				_ = listener.Close()
				return err
			}

			handler := httpadapter.NewServer(app.newRelay(), app.logger)
			return httpadapter.Serve(ctx, listener, handler, app.logger)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", app.config.Server.Listen, "Address to listen on")

	return cmd
}
