package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"notesfrais/internal/cli"
	"notesfrais/internal/core"
	"notesfrais/internal/form"
	"notesfrais/internal/scan"
)

func scanCmd() *cobra.Command {
	prefill := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "scan <receipt>",
		Short: "Scan a receipt and show the fields it fills",
		Long: `Upload a receipt image to the OCR endpoint and print the expense form
as it would look after the scan. Flags pre-fill the form first, so the
same write rules as on the page apply (a pre-filled label is kept).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], prefill)
		},
	}
	for _, name := range form.ExpenseFields {
		prefill[name] = cmd.Flags().String(name, "", "pre-filled "+name)
	}
	return cmd
}

func runScan(cmd *cobra.Command, path string, prefill map[string]*string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read receipt: %w", err)
	}

	doc := form.NewDocument(form.ExpenseFields...)
	for name, v := range prefill {
		doc.Set(name, *v)
	}
	doc.SetFile(core.ReceiptFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	})

	opts := []scan.Option{scan.WithLogger(a.logger)}
	j, err := cli.InitJournal(a.cfg, a.logger)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		opts = append(opts, scan.WithRecorder(j))
	}

	out := scan.NewController(a.api, opts...).Scan(cmd.Context(), doc)
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, cli.Severity(out.Severity(), out.Message))
	for _, name := range form.ExpenseFields {
		v, _ := doc.Value(name)
		fmt.Fprintf(w, "  %-10s %s\n", name, v)
	}
	if out.RawText != "" {
		fmt.Fprintln(w, cli.SubtleStyle.Render(out.RawText))
	}
	if !out.OK() {
		return fmt.Errorf("scan %s: %w", out.Kind, out.Err)
	}
	return nil
}
