package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd(deps runDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "roster-import",
		Short:         "Import goalie roster and session CSV exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCmd(deps))
	return cmd
}

// Execute runs the CLI and exits with a code describing the failure class.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(code)
	}
}
