package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notesfrais/internal/cli"
	"notesfrais/internal/export"
	"notesfrais/internal/ports"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the visible expense notes",
	}
	cmd.AddCommand(exportCSVCmd())
	cmd.AddCommand(exportSheetsCmd())
	return cmd
}

func exportCSVCmd() *cobra.Command {
	var (
		filters filterFlags
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the report as ';' separated CSV",
		Long: `Write the filtered notes with the report columns. Without --out the
CSV goes to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if outPath == "" {
				records, err := a.api.ListExpenses(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list expenses: %w", err)
				}
				visible, err := filters.visible(records)
				if err != nil {
					return err
				}
				return export.WriteCSV(cmd.OutOrStdout(), visible)
			}
			return runExport(cmd, a, &filters, export.CSVFile{Path: outPath})
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "file to write")
	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Replace the configured Google Sheets tab with the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			sheets, err := cli.InitSheets(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			return runExport(cmd, a, &filters, sheets)
		},
	}
	filters.register(cmd)
	return cmd
}

func runExport(cmd *cobra.Command, a *app, filters *filterFlags, dest ports.RowExporter) error {
	records, err := a.api.ListExpenses(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}
	visible, err := filters.visible(records)
	if err != nil {
		return err
	}
	ref, err := dest.ExportRows(cmd.Context(), visible)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.Severity("success", fmt.Sprintf("%d notes exportées vers %s", len(visible), ref)))
	return nil
}
