// Package view derives the visible row set from the loaded dataset, the
// filter criteria and the sort state.
package view

import (
	"strings"

	"notesfrais/internal/core"
)

// Criteria narrows the dataset. Blank fields impose no constraint. Date
// bounds are inclusive and compared lexically.
type Criteria struct {
	DateFrom string
	DateTo   string
	Chantier string
}

// Normalized trims every bound.
func (c Criteria) Normalized() Criteria {
	return Criteria{
		DateFrom: strings.TrimSpace(c.DateFrom),
		DateTo:   strings.TrimSpace(c.DateTo),
		Chantier: strings.TrimSpace(c.Chantier),
	}
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	n := c.Normalized()
	return n.DateFrom == "" && n.DateTo == "" && n.Chantier == ""
}

// Match reports whether r satisfies all criteria.
func (c Criteria) Match(r core.ExpenseRecord) bool {
	n := c.Normalized()
	if n.DateFrom != "" && r.Date < n.DateFrom {
		return false
	}
	if n.DateTo != "" && r.Date > n.DateTo {
		return false
	}
	if n.Chantier != "" && !strings.Contains(strings.ToLower(r.Chantier), strings.ToLower(n.Chantier)) {
		return false
	}
	return true
}
