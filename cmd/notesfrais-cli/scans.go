package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"notesfrais/internal/cli"
	"notesfrais/internal/core"
)

func scansCmd() *cobra.Command {
	var (
		limit   int
		outcome string
	)
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "Show recent receipt scans from the journal",
		Long: `List the latest scan attempts recorded in the scan journal
(JOURNAL_DB_PATH), newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			j, err := cli.InitJournal(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if j == nil {
				return errors.New("no scan journal configured (JOURNAL_DB_PATH)")
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), limit, outcome)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Aucun scan enregistré."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), scansTable(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	cmd.Flags().StringVar(&outcome, "outcome", "", "only this outcome (applied, partial, server, transport)")
	return cmd
}

var outcomeStyles = map[string]lipgloss.Style{
	"applied":   cli.SuccessStyle,
	"partial":   cli.WarningStyle,
	"server":    cli.ErrorStyle,
	"transport": cli.ErrorStyle,
}

func scansTable(entries []core.ScanEntry) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.SubtleStyle).
		Headers("Date", "Fichier", "Résultat", "Champs", "Message")
	for _, e := range entries {
		style, ok := outcomeStyles[e.Outcome]
		if !ok {
			style = lipgloss.NewStyle()
		}
		t.Row(
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.FileName,
			style.Render(e.Outcome),
			strings.Join(e.Applied, ", "),
			e.Message,
		)
	}
	return t.String()
}
