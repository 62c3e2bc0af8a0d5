// Package export writes a record set as the monthly report layout: to CSV
// or to a Google Sheets tab.
package export

import (
	"notesfrais/internal/core"
)

// Header is the report's column row.
var Header = []string{"Date", "Montant TTC", "Montant HT", "TVA", "Libellé", "Chantier", "Utilisateur", "Justificatif"}

// Row returns the report cells of one record. Parsable amounts are written
// with two decimals, others as received; absent amounts are empty.
func Row(r core.ExpenseRecord) []string {
	return []string{
		r.Date,
		amountCell(r.Amount),
		amountCell(r.AmountHT),
		amountCell(r.TVAAmount),
		r.Label,
		r.Chantier,
		r.UserEmail,
		r.ReceiptPath,
	}
}

func amountCell(a core.Amount) string {
	if !a.IsSet() {
		return ""
	}
	if d, ok := a.Decimal(); ok {
		return core.FormatFixed(d)
	}
	return a.Raw()
}
