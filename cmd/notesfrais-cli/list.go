package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notesfrais/internal/cli"
	"notesfrais/internal/core"
	"notesfrais/internal/render"
	"notesfrais/internal/view"
)

// filterFlags are the table controls as command line flags.
type filterFlags struct {
	from     string
	to       string
	chantier string
	sortKey  string
	desc     bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "only notes dated on or after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "only notes dated on or before this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.chantier, "chantier", "", "only notes whose chantier contains this text")
	cmd.Flags().StringVar(&f.sortKey, "sort", "", "sort by date or amount")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
}

// visible applies the flags to records the way the page would.
func (f *filterFlags) visible(records []core.ExpenseRecord) ([]core.ExpenseRecord, error) {
	for _, d := range []string{f.from, f.to} {
		if d != "" {
			if err := core.ValidateDate(d); err != nil {
				return nil, fmt.Errorf("%q: %w", d, err)
			}
		}
	}

	var state view.SortState
	if f.sortKey != "" {
		key, err := view.ParseSortKey(f.sortKey)
		if err != nil {
			return nil, err
		}
		state.Invoke(key)
		if f.desc {
			state.Invoke(key)
		}
	}
	criteria := view.Criteria{DateFrom: f.from, DateTo: f.to, Chantier: f.chantier}
	return view.VisibleRows(records, criteria, state), nil
}

func listCmd() *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expense notes",
		Long: `Fetch every expense note visible to the configured session and print
the ones matching the filters, in the requested order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, &filters)
		},
	}
	filters.register(cmd)
	return cmd
}

func runList(cmd *cobra.Command, filters *filterFlags) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	records, err := a.api.ListExpenses(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}
	visible, err := filters.visible(records)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(visible) == 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render("Aucune note de frais."))
		return nil
	}
	rows := render.BuildRows(visible, render.Options{UploadsBase: a.cfg.UploadsBase})
	for i := range rows {
		// Terminal links need the upstream origin.
		if strings.HasPrefix(rows[i].ReceiptURL, "/") {
			rows[i].ReceiptURL = a.cfg.APIBaseURL + rows[i].ReceiptURL
		}
	}
	fmt.Fprintln(out, render.Text(rows))
	fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d / %d notes", len(visible), len(records))))
	return nil
}
