// Package http is the page host: it keeps one page session per browser tab
// and serves the expense page and its HTMX partials.
//
// This file holds the builder used for HTMX responses: HX-Trigger events,
// status and body.
package http

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side events the page listens to.
const (
	EventNotification = "show-notification"
	EventFiltersReset = "filters:reset"
	EventTableRefresh = "expenses:refresh"
)

// NotificationType is the severity of a toast.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// notificationDurations are in milliseconds.
var notificationDurations = map[NotificationType]int{
	NotificationSuccess: 3000,
	NotificationInfo:    3000,
	NotificationWarning: 5000,
	NotificationError:   6000,
}

// HTMXResponseBuilder collects triggers, headers and a body, then writes
// them in one go.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       bytes.Buffer
	headers    map[string]string
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event to HX-Trigger. data may be nil.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	if data == nil {
		data = struct{}{}
	}
	b.triggers[name] = data
	return b
}

// TriggerFiltersReset tells the page to clear its filter inputs.
func (b *HTMXResponseBuilder) TriggerFiltersReset() *HTMXResponseBuilder {
	return b.Trigger(EventFiltersReset, nil)
}

// TriggerTableRefresh asks the page to refetch the table body.
func (b *HTMXResponseBuilder) TriggerTableRefresh() *HTMXResponseBuilder {
	return b.Trigger(EventTableRefresh, nil)
}

// TriggerNotification shows a toast with the default duration for its type.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string) *HTMXResponseBuilder {
	duration, ok := notificationDurations[kind]
	if !ok {
		duration = 3000
	}
	return b.Trigger(EventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": duration,
	})
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyWriter exposes the body buffer to template execution.
func (b *HTMXResponseBuilder) BodyWriter() *bytes.Buffer {
	return &b.body
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body.Reset()
	b.body.WriteString(content)
	return b
}

// Write sends the response.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}

// ErrorResponse is an HTML error fragment. The message is escaped.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyString(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func ForbiddenError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusForbidden, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
