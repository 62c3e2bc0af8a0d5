package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"notesfrais/internal/core"
	"notesfrais/internal/form"
	"notesfrais/internal/view"
)

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// filterCriteria reads the filter controls sent with the request, from the
// query string or a form body.
func filterCriteria(r *http.Request) view.Criteria {
	if err := r.ParseForm(); err != nil {
		return view.Criteria{}
	}
	return form.FromValues(r.Form).Filters()
}

// hasFilters reports whether the request carries any filter control.
func hasFilters(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has(form.FilterDateFrom) || q.Has(form.FilterDateTo) || q.Has(form.FilterChantier)
}

// moderationTarget reads the record ID and transition from the path.
func moderationTarget(r *http.Request) (int64, core.ModerationAction, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	action := core.ModerationAction(r.PathValue("action"))
	if !action.Valid() {
		return 0, "", false
	}
	return id, action, true
}
