package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerFiltersReset().
		TriggerNotification(NotificationWarning, "Attention").
		Write(w)

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if _, ok := triggers[EventFiltersReset]; !ok {
		t.Errorf("missing %s trigger", EventFiltersReset)
	}

	var notif struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(triggers[EventNotification], &notif); err != nil {
		t.Fatalf("notification payload: %v", err)
	}
	if notif.Type != "warning" || notif.Message != "Attention" || notif.Duration != 5000 {
		t.Errorf("notification = %+v", notif)
	}
}

func TestHTMXResponseBuilder_LastTriggerWins(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerNotification(NotificationInfo, "first").
		TriggerNotification(NotificationError, "second").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if strings.Contains(trigger, "first") || !strings.Contains(trigger, "second") {
		t.Errorf("HX-Trigger = %s", trigger)
	}
}

func TestHTMXResponseBuilder_BodyWriter(t *testing.T) {
	w := httptest.NewRecorder()

	b := NewHTMXResponse()
	b.BodyWriter().WriteString("<tr></tr>")
	b.Header("X-Custom", "value").Write(w)

	if w.Body.String() != "<tr></tr>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("X-Custom = %q", w.Header().Get("X-Custom"))
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		status  int
	}{
		{"bad request", BadRequestError("x"), http.StatusBadRequest},
		{"forbidden", ForbiddenError("x"), http.StatusForbidden},
		{"not found", NotFoundError("x"), http.StatusNotFound},
		{"internal", InternalServerError("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.status {
				t.Errorf("Status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestErrorResponse_EscapesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, "<script>alert(1)</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("message not escaped: %s", body)
	}
	if !strings.Contains(body, `class="error"`) {
		t.Errorf("missing error class: %s", body)
	}
}
