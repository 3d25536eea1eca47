package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rai",
		Short:         "RevisionAI (rai): study sessions with a streaming tutor relay",
		Long:          "rai (RevisionAI) keeps revision sessions on disk, trims long conversations into a rolling note, and relays chat requests to the upstream model as a server-sent event stream.",
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

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newSessionCmd(app),
		newChatCmd(app),
		newAuthCmd(app),
	)

	return rootCmd
}
