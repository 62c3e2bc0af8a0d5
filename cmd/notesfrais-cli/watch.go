package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"notesfrais/internal/cli"
	"notesfrais/internal/core"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print moderation events as they are published",
		Long: `Consume the moderation queue (AMQP_URL) and print every approve or
reject request dispatched from the page or from this tool. Stops on Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			broker, err := cli.InitAMQP(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if broker == nil {
				return errors.New("no broker configured (AMQP_URL)")
			}
			defer broker.Close()

			err = broker.ConsumeModeration(cmd.Context(), printEvent(cmd.OutOrStdout()))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func printEvent(w io.Writer) func(context.Context, core.ModerationEvent) error {
	return func(_ context.Context, ev core.ModerationEvent) error {
		level := "success"
		if ev.Action == core.ActionReject {
			level = "error"
		}
		line := fmt.Sprintf("%s note %d (%s)", ev.Action, ev.ExpenseID, ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
		if ev.Actor != "" {
			line += " par " + ev.Actor
		}
		_, err := fmt.Fprintln(w, cli.Severity(level, line))
		return err
	}
}
