package http

import (
	"net/http"
	"time"

	"notesfrais/internal/core"
	applog "notesfrais/internal/log"
)

const (
	msgAdminOnly        = "Action réservée aux administrateurs."
	msgUnknownAction    = "Action inconnue"
	msgModerationSent   = "Demande envoyée."
	msgModerationFailed = "Impossible de joindre le serveur."
)

// handleModerate forwards an approve or reject request to the expense API
// without looking at its answer, then reloads and re-renders the table.
func (s *Server) handleModerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx, s.logger)

	if !s.opts.IsAdmin {
		logger.WarnContext(ctx, "Moderation refused", applog.FieldPath, r.URL.Path)
		ForbiddenError(msgAdminOnly).Write(w)
		return
	}
	id, action, ok := moderationTarget(r)
	if !ok {
		NotFoundError(msgUnknownAction).Write(w)
		return
	}

	resp := NewHTMXResponse()
	if err := s.deps.Moderator.Moderate(ctx, id, action); err != nil {
		logger.ErrorContext(ctx, "Moderation dispatch failed",
			applog.FieldOperation, string(action),
			applog.FieldExpenseID, id,
			applog.FieldError, err)
		resp.TriggerNotification(NotificationError, msgModerationFailed)
	} else {
		logger.InfoContext(ctx, "Moderation dispatched",
			applog.FieldOperation, string(action),
			applog.FieldExpenseID, id)
		resp.TriggerNotification(NotificationInfo, msgModerationSent)
		s.publish(r, core.ModerationEvent{
			ExpenseID: id,
			Action:    action,
			Actor:     s.opts.Viewer,
			Timestamp: time.Now().UTC(),
		})
	}

	p, _ := s.sessions.lookup(w, r)
	if err := p.store.Load(ctx); err != nil {
		resp.TriggerNotification(NotificationError, msgReloadFailed)
	}
	s.writeRows(r, resp, p.visible(filterCriteria(r)))
	resp.Write(w)
}

// publish announces a dispatched moderation. Failures are logged only.
func (s *Server) publish(r *http.Request, ev core.ModerationEvent) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.PublishModeration(r.Context(), ev); err != nil {
		applog.FromContext(r.Context(), s.logger).WarnContext(r.Context(), "Moderation event not published",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldExpenseID, ev.ExpenseID,
			applog.FieldError, err)
	}
}
