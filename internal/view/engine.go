package view

import (
	"sort"

	"notesfrais/internal/core"
)

// VisibleRows filters all by criteria and orders the result by state. all is
// never modified. With no active sort key the received order is kept.
func VisibleRows(all []core.ExpenseRecord, criteria Criteria, state SortState) []core.ExpenseRecord {
	rows := make([]core.ExpenseRecord, 0, len(all))
	for _, r := range all {
		if criteria.Match(r) {
			rows = append(rows, r)
		}
	}

	less := lessFunc(state.Key)
	if less == nil {
		return rows
	}
	desc := state.Direction == Descending
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	return rows
}

func lessFunc(key SortKey) func(a, b core.ExpenseRecord) bool {
	switch key {
	case SortDate:
		return func(a, b core.ExpenseRecord) bool { return a.Date < b.Date }
	case SortAmount:
		// Unparsable amounts order as zero.
		return func(a, b core.ExpenseRecord) bool { return a.Amount.OrZero().LessThan(b.Amount.OrZero()) }
	}
	return nil
}
