package http

import (
	"bytes"
	"net/http"
	"time"

	"notesfrais/internal/core"
	"notesfrais/internal/export"
	applog "notesfrais/internal/log"
)

// handleExportCSV downloads the visible rows. Filters in the query string
// win over the ones last applied on the page.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx, s.logger)

	p, fresh := s.sessions.lookup(w, r)
	if fresh {
		if err := p.ensureLoaded(ctx); err != nil {
			http.Error(w, msgLoadFailed, http.StatusBadGateway)
			return
		}
	}

	var records []core.ExpenseRecord
	if hasFilters(r) {
		records = p.visible(filterCriteria(r))
	} else {
		_, records = p.current()
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		logger.ErrorContext(ctx, "CSV export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		http.Error(w, "Export impossible", http.StatusInternalServerError)
		return
	}

	logger.InfoContext(ctx, "CSV exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldRecords, len(records))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(time.Now())+`"`)
	_, _ = buf.WriteTo(w)
}
