package render

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	badgeStyles = map[string]lipgloss.Style{
		VariantNeutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D")),
		VariantPositive: lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4")),
		VariantNegative: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
)

// Text renders rows as a terminal table.
func Text(rows []Row) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		Headers("ID", "Date", "Montant", "Libellé", "Chantier", "Utilisateur", "Statut", "Justificatif").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		status := badgeStyles[r.Badge.Variant].Render(r.Badge.Label)
		if r.Annotation != "" {
			status += "\n" + subtleStyle.Render(r.Annotation)
		}
		receipt := r.ReceiptURL
		if receipt == "" {
			receipt = "-"
		}
		t.Row(strconv.FormatInt(r.ID, 10), r.Date, r.Amount, r.Label, r.Chantier, r.UserEmail, status, receipt)
	}
	return t.String()
}
