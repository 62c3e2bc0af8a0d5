package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"notesfrais/internal/cli"
	"notesfrais/internal/core"
	applog "notesfrais/internal/log"
)

// moderateCmd builds the approve and reject commands.
func moderateCmd(action, label string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: label + " an expense note (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModerate(cmd, core.ModerationAction(action), args[0])
		},
	}
}

func runModerate(cmd *cobra.Command, action core.ModerationAction, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid expense id %q", rawID)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if !a.cfg.IsAdmin() {
		return fmt.Errorf("%s is not an admin (ADMIN_EMAILS)", a.cfg.ViewerEmail)
	}

	ctx := cmd.Context()
	if err := a.api.Moderate(ctx, id, action); err != nil {
		return fmt.Errorf("failed to dispatch %s: %w", action, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.Severity("success", fmt.Sprintf("%s envoyé pour la note %d", action, id)))

	broker, err := cli.InitAMQP(a.cfg, a.logger)
	if err != nil {
		a.logger.Warn("Moderation event not published", applog.FieldError, err)
		return nil
	}
	if broker == nil {
		return nil
	}
	defer broker.Close()
	ev := core.ModerationEvent{ExpenseID: id, Action: action, Actor: a.cfg.ViewerEmail, Timestamp: time.Now().UTC()}
	if err := broker.PublishModeration(ctx, ev); err != nil {
		a.logger.Warn("Moderation event not published", applog.FieldError, err)
	}
	return nil
}
