package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notesfrais/internal/apiclient"
	"notesfrais/internal/cli"
	"notesfrais/internal/config"
	applog "notesfrais/internal/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notesfrais-cli",
		Short: "Expense notes from the terminal",
		Long: `notesfrais-cli lists, scans, moderates and exports expense notes
against the same expense API the web page uses.

Configuration comes from the environment (and a local .env file).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(listCmd())
	root.AddCommand(scanCmd())
	root.AddCommand(moderateCmd("approve", "Valider"))
	root.AddCommand(moderateCmd("reject", "Refuser"))
	root.AddCommand(exportCmd())
	root.AddCommand(scansCmd())
	root.AddCommand(watchCmd())
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// app is what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
	api    *apiclient.Client
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if f := cmd.Flag("log-level"); f != nil {
		level = f.Value.String()
	}
	logger := cli.SetupLogger(level, cmd.ErrOrStderr()).WithComponent(applog.ComponentCLI)
	return &app{cfg: cfg, logger: logger, api: cli.NewAPIClient(cfg, logger)}, nil
}
