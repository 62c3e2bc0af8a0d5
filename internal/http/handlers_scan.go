package http

import (
	"errors"
	"net/http"

	"notesfrais/internal/form"
	applog "notesfrais/internal/log"
	"notesfrais/internal/scan"
)

const msgReceiptTooLarge = "Fichier trop volumineux."

// handleScan uploads the chosen receipt and answers with the expense form
// fields, merged with whatever the scan extracted.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx, s.logger)
	p, _ := s.sessions.lookup(w, r)

	doc, err := form.FromRequest(r, s.opts.MaxReceiptBytes)
	switch {
	case errors.Is(err, form.ErrReceiptTooLarge):
		logger.WarnContext(ctx, "Receipt rejected",
			applog.FieldOperation, applog.OpScan,
			applog.FieldError, err)
		view := formView{
			BusyLabel:   scan.BusyLabel,
			Scan:        p.scan.Control(),
			Message:     msgReceiptTooLarge,
			MessageKind: string(NotificationWarning),
			Values:      form.FromValues(r.Form).Values(),
		}
		s.writeForm(r, NewHTMXResponse().TriggerNotification(NotificationWarning, msgReceiptTooLarge), view).Write(w)
		return
	case err != nil:
		logger.WarnContext(ctx, "Scan form unreadable",
			applog.FieldOperation, applog.OpScan,
			applog.FieldError, err)
		BadRequestError("Formulaire illisible").Write(w)
		return
	}

	out := p.scan.Scan(ctx, doc)
	view := formView{
		BusyLabel:   scan.BusyLabel,
		Scan:        p.scan.Control(),
		Message:     out.Message,
		MessageKind: out.Severity(),
		RawText:     out.RawText,
		Values:      doc.Values(),
	}
	resp := NewHTMXResponse().TriggerNotification(NotificationType(out.Severity()), out.Message)
	s.writeForm(r, resp, view).Write(w)
}

// writeForm renders the expense form fields into resp.
func (s *Server) writeForm(r *http.Request, resp *HTMXResponseBuilder, view formView) *HTMXResponseBuilder {
	if err := s.templates.ExecuteTemplate(resp.BodyWriter(), formTemplate, view); err != nil {
		applog.FromContext(r.Context(), s.logger).ErrorContext(r.Context(), "Form render failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		return InternalServerError(msgRenderFailed)
	}
	return resp
}
