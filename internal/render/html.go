package render

import (
	"fmt"
	"html/template"
	"io"
)

// RowsTemplate is the template that renders a complete table body.
const RowsTemplate = "expense_rows"

// HTML writes rows through the page templates.
type HTML struct {
	templates *template.Template
}

// NewHTML uses t, which must define RowsTemplate.
func NewHTML(t *template.Template) (*HTML, error) {
	if t == nil || t.Lookup(RowsTemplate) == nil {
		return nil, fmt.Errorf("template %q not defined", RowsTemplate)
	}
	return &HTML{templates: t}, nil
}

// Body writes the whole table body for rows. The previous content is meant
// to be replaced, never patched.
func (h *HTML) Body(w io.Writer, rows []Row) error {
	if err := h.templates.ExecuteTemplate(w, RowsTemplate, rows); err != nil {
		return fmt.Errorf("render table body: %w", err)
	}
	return nil
}
