package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"notesfrais/internal/core"
)

// Separator of the report CSV.
const Separator = ';'

// WriteCSV writes the header and one line per record.
func WriteCSV(w io.Writer, records []core.ExpenseRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// FileName is the download name of a report produced at t.
func FileName(t time.Time) string {
	return "notes-de-frais-" + t.Format(core.DateLayout) + ".csv"
}

// CSVFile implements ports.RowExporter by writing a file.
type CSVFile struct {
	Path string
}

// ExportRows writes records to Path, replacing any previous file, and
// returns the path written.
func (f CSVFile) ExportRows(_ context.Context, records []core.ExpenseRecord) (string, error) {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return "", fmt.Errorf("move export file: %w", err)
	}
	return f.Path, nil
}
