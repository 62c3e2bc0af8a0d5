package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"notesfrais/internal/core"
	"notesfrais/internal/form"
	applog "notesfrais/internal/log"
	"notesfrais/internal/render"
	"notesfrais/internal/scan"
	"notesfrais/internal/view"
)

// User-facing messages of the table.
const (
	msgLoadFailed   = "Impossible de charger les notes de frais."
	msgReloadFailed = "Impossible d'actualiser les notes de frais, la liste affichée peut être ancienne."
	msgReloaded     = "Liste actualisée."
	msgRenderFailed = "Erreur d'affichage"
)

type (
	// pageData feeds index.html.
	pageData struct {
		Viewer    string
		LoadError string
		SubmitURL string
		Form      formView
		Criteria  view.Criteria
		Admin     bool
		Rows      []render.Row
	}

	// formView feeds the expense_form partial.
	formView struct {
		BusyLabel   string
		Scan        scan.Control
		Message     string
		MessageKind string
		RawText     string
		Values      map[string]string
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the templates and that the expense API answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"templates":    "ok",
		"sessions":     s.sessions.size(),
		"rate_limiter": map[string]any{"active_clients": s.rateLimiter.activeClients()},
		"security":     s.security.snapshot(),
	}
	if _, err := s.deps.Lister.ListExpenses(ctx); err != nil {
		checks["expense_api"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["expense_api"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleIndex opens a new page session, loads its dataset and renders the
// full page. A failed load still renders, with a banner.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx, s.logger)
	p := s.sessions.open(w, r)

	data := pageData{
		Viewer:    s.opts.Viewer,
		SubmitURL: s.submitURL(),
		Admin:     s.opts.IsAdmin,
		Form:      s.emptyForm(p),
	}
	if err := p.store.Load(ctx); err != nil {
		data.LoadError = msgLoadFailed
	}
	data.Rows = s.buildRows(p.visible(view.Criteria{}))

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, indexTemplate, data); err != nil {
		logger.ErrorContext(ctx, "Index template execution failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		http.Error(w, msgRenderFailed, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleTable re-renders the table body for the submitted filters.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	resp := NewHTMXResponse()
	p := s.session(w, r, resp)
	criteria := filterCriteria(r)
	s.writeRows(r, resp, p.visible(criteria))

	applog.FromContext(r.Context(), s.logger).DebugContext(r.Context(), "Table filtered",
		applog.FieldOperation, applog.OpFilter,
		"date_from", criteria.DateFrom,
		"date_to", criteria.DateTo,
		"chantier", criteria.Chantier)
	resp.Write(w)
}

// handleSort activates a sort key. Repeating a key flips its direction.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	key, err := view.ParseSortKey(r.PathValue("key"))
	if err != nil {
		BadRequestError("Tri inconnu").Write(w)
		return
	}

	resp := NewHTMXResponse()
	p := s.session(w, r, resp)
	state := p.invokeSort(key)
	s.writeRows(r, resp, p.visible(filterCriteria(r)))

	applog.FromContext(r.Context(), s.logger).DebugContext(r.Context(), "Table sorted",
		applog.FieldOperation, applog.OpSort,
		applog.FieldSortKey, string(state.Key),
		applog.FieldSortDir, state.Direction.String())
	resp.Write(w)
}

// handleReset clears filters and ordering, and tells the page to empty
// its filter inputs.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	resp := NewHTMXResponse().TriggerFiltersReset()
	p := s.session(w, r, resp)
	p.reset()
	_, rows := p.current()
	s.writeRows(r, resp, rows)

	applog.FromContext(r.Context(), s.logger).DebugContext(r.Context(), "Table reset",
		applog.FieldOperation, applog.OpReset)
	resp.Write(w)
}

// handleReload refetches the dataset. On failure the previous rows stay.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	resp := NewHTMXResponse()
	p, _ := s.sessions.lookup(w, r)
	if err := p.store.Load(r.Context()); err != nil {
		resp.TriggerNotification(NotificationError, msgReloadFailed)
	} else {
		resp.TriggerNotification(NotificationSuccess, msgReloaded)
	}
	s.writeRows(r, resp, p.visible(filterCriteria(r)))
	resp.Write(w)
}

// session resolves the page session. A session created on the fly is
// loaded first; a failed load is reported on resp.
func (s *Server) session(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder) *pageSession {
	p, fresh := s.sessions.lookup(w, r)
	if fresh {
		if err := p.ensureLoaded(r.Context()); err != nil {
			resp.TriggerNotification(NotificationError, msgLoadFailed)
		}
	}
	return p
}

func (s *Server) buildRows(records []core.ExpenseRecord) []render.Row {
	return render.BuildRows(records, render.Options{IsAdmin: s.opts.IsAdmin, UploadsBase: s.opts.UploadsBase})
}

// writeRows renders the whole table body into resp.
func (s *Server) writeRows(r *http.Request, resp *HTMXResponseBuilder, records []core.ExpenseRecord) {
	rows := s.buildRows(records)
	body := resp.BodyWriter()
	body.Reset()
	if err := s.rows.Body(body, rows); err != nil {
		applog.FromContext(r.Context(), s.logger).ErrorContext(r.Context(), "Table render failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		resp.Status(http.StatusInternalServerError).BodyString(msgRenderFailed)
	}
}

func (s *Server) emptyForm(p *pageSession) formView {
	return formView{
		BusyLabel: scan.BusyLabel,
		Scan:      p.scan.Control(),
		Values:    form.NewDocument(form.ExpenseFields...).Values(),
	}
}
