// Package form exposes the page's form controls to the filter and scan
// logic: filter values are read, expense fields are read and written.
package form

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"notesfrais/internal/core"
	"notesfrais/internal/view"
)

// Field names of the expense submission form.
const (
	FieldReceipt   = "receipt"
	FieldAmount    = "amount"
	FieldAmountHT  = "amount_ht"
	FieldTVAAmount = "tva_amount"
	FieldDate      = "date"
	FieldLabel     = "label"
	FieldChantier  = "chantier"
)

// Filter control names.
const (
	FilterDateFrom = "filter-date-from"
	FilterDateTo   = "filter-date-to"
	FilterChantier = "filter-chantier"
)

// ExpenseFields are the text fields of a complete expense form.
var ExpenseFields = []string{FieldAmount, FieldAmountHT, FieldTVAAmount, FieldDate, FieldLabel, FieldChantier}

// ErrReceiptTooLarge is returned when the uploaded receipt exceeds the limit.
var ErrReceiptTooLarge = errors.New("receipt file too large")

// Binder reads filter values and reads or writes named form fields.
// Writing a field the document does not have is a no-op.
type Binder interface {
	Filters() view.Criteria
	Value(name string) (string, bool)
	Set(name, value string) bool
	File() (core.ReceiptFile, bool)
}

// Document is an in-memory form: a fixed set of named text fields plus an
// optional selected file.
type Document struct {
	fields map[string]string
	file   *core.ReceiptFile
}

// NewDocument declares empty fields for names.
func NewDocument(names ...string) *Document {
	d := &Document{fields: make(map[string]string, len(names))}
	for _, n := range names {
		d.fields[n] = ""
	}
	return d
}

// FromValues declares one field per submitted key, holding its first value.
func FromValues(values url.Values) *Document {
	d := &Document{fields: make(map[string]string, len(values))}
	for k, v := range values {
		if len(v) > 0 {
			d.fields[k] = v[0]
		} else {
			d.fields[k] = ""
		}
	}
	return d
}

// FromRequest builds a document from a form or multipart request. The
// receipt file, if one was chosen, is read up to maxFileBytes.
func FromRequest(r *http.Request, maxFileBytes int64) (*Document, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFileBytes + 1<<20); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	d := FromValues(r.Form)
	if r.MultipartForm == nil {
		return d, nil
	}

	f, hdr, err := r.FormFile(FieldReceipt)
	if errors.Is(err, http.ErrMissingFile) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}
	defer f.Close()

	if hdr.Filename == "" || hdr.Size == 0 {
		return d, nil
	}
	if hdr.Size > maxFileBytes {
		return nil, ErrReceiptTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(f, maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}
	if int64(len(data)) > maxFileBytes {
		return nil, ErrReceiptTooLarge
	}
	d.SetFile(core.ReceiptFile{Name: hdr.Filename, ContentType: hdr.Header.Get("Content-Type"), Data: data})
	return d, nil
}

// Filters reads the three filter controls. Missing controls read as empty.
func (d *Document) Filters() view.Criteria {
	return view.Criteria{
		DateFrom: d.fields[FilterDateFrom],
		DateTo:   d.fields[FilterDateTo],
		Chantier: d.fields[FilterChantier],
	}.Normalized()
}

// Value returns a field's content and whether the field exists.
func (d *Document) Value(name string) (string, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// Set writes value into an existing field and reports whether it did.
func (d *Document) Set(name, value string) bool {
	if _, ok := d.fields[name]; !ok {
		return false
	}
	d.fields[name] = value
	return true
}

// Declare adds a field if it is missing and leaves existing content alone.
func (d *Document) Declare(names ...string) {
	for _, n := range names {
		if _, ok := d.fields[n]; !ok {
			d.fields[n] = ""
		}
	}
}

// File returns the selected receipt, if any.
func (d *Document) File() (core.ReceiptFile, bool) {
	if d.file == nil {
		return core.ReceiptFile{}, false
	}
	return *d.file, true
}

// SetFile selects a receipt.
func (d *Document) SetFile(f core.ReceiptFile) {
	d.file = &f
}

// Values returns a copy of all fields.
func (d *Document) Values() map[string]string {
	return maps.Clone(d.fields)
}
