package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:          "appserve",
		Short:        "appserve: static web application server",
		Long:         "Serves the app directory under /app and redirects / to /app/index.html.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	flags.bind(cmd.PersistentFlags())

	cmd.AddCommand(
		serveCmd(flags),
		initCmd(),
		validateCmd(flags),
		configCmd(flags),
		checkCmd(flags),
		versionCmd(),
	)
	return cmd
}
