package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesfrais/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", SessionCookie: "session=abc"})
}

func TestListExpenses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/expenses", r.URL.Path)
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":1,"date":"2024-03-01","amount":12.5,"label":"Repas","chantier":"Lyon","user_email":"a@x.fr","status":"pending"},
			{"id":2,"date":"2024-03-02","amount":"n/a","label":"Essence","chantier":"Nice","user_email":"b@x.fr","status":"weird","receipt_path":"r.jpg"}
		]`)
	})

	records, err := c.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "12.50 €", core.FormatCurrency(records[0].Amount))
	assert.Equal(t, "n/a", records[1].Amount.Raw())
	assert.Equal(t, "r.jpg", records[1].ReceiptPath)
}

func TestListExpensesFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantServer bool
	}{
		{name: "server error payload", status: http.StatusInternalServerError, body: `{"error":"db down"}`, wantServer: true},
		{name: "plain failure", status: http.StatusBadGateway, body: `<html>bad gateway</html>`},
		{name: "malformed success body", status: http.StatusOK, body: `{"oops":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.ListExpenses(context.Background())
			require.Error(t, err)

			var serverErr *ServerError
			var transportErr *TransportError
			if tt.wantServer {
				require.ErrorAs(t, err, &serverErr)
				assert.Equal(t, "db down", serverErr.Message)
			} else {
				require.ErrorAs(t, err, &transportErr)
				assert.Equal(t, tt.status, transportErr.StatusCode)
			}
		})
	}
}

func TestListExpensesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base})
	_, err := c.ListExpenses(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Zero(t, transportErr.StatusCode)
}

func TestScanReceiptSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scan_receipt", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("receipt")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "ticket.jpg", hdr.Filename)
		assert.Equal(t, "image/jpeg", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte("JPEG"), data)

		_ = json.NewEncoder(w).Encode(map[string]any{"amount": "12.5", "date": "2024-03-01", "raw_text": "TOTAL 12,50"})
	})

	res, err := c.ScanReceipt(context.Background(), core.ReceiptFile{Name: "/tmp/ticket.jpg", ContentType: "image/jpeg", Data: []byte("JPEG")})
	require.NoError(t, err)
	assert.Equal(t, core.Some("12.5"), res.Amount)
	assert.Equal(t, core.Some("2024-03-01"), res.Date)
	assert.False(t, res.Label.Valid)
	assert.Equal(t, "TOTAL 12,50", res.RawText.Value)
}

func TestScanReceiptErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantServer  string
		wantRawText string
	}{
		{name: "error field with success status", status: http.StatusOK, body: `{"error":"unreadable image"}`, wantServer: "unreadable image"},
		{name: "error field with failure status", status: http.StatusInternalServerError, body: `{"error":"OCR failed","raw_text":"???"}`, wantServer: "OCR failed", wantRawText: "???"},
		{name: "failure status without payload", status: http.StatusServiceUnavailable, body: ``},
		{name: "malformed json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.ScanReceipt(context.Background(), core.ReceiptFile{Name: "a.png", Data: []byte{1}})
			require.Error(t, err)

			var serverErr *ServerError
			if tt.wantServer != "" {
				require.ErrorAs(t, err, &serverErr)
				assert.Equal(t, tt.wantServer, serverErr.Error())
				assert.Equal(t, tt.wantRawText, serverErr.RawText)
				return
			}
			assert.False(t, errors.As(err, &serverErr))
			var transportErr *TransportError
			assert.ErrorAs(t, err, &transportErr)
		})
	}
}

func TestModerate(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		http.Redirect(w, r, "/admin", http.StatusFound)
	})

	require.NoError(t, c.Moderate(context.Background(), 42, core.ActionApprove))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/admin/expenses/42/approve", gotPath)

	require.NoError(t, c.Moderate(context.Background(), 7, core.ActionReject))
	assert.Equal(t, "/admin/expenses/7/reject", gotPath)
}

func TestModerateIgnoresResponseStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	assert.NoError(t, c.Moderate(context.Background(), 1, core.ActionReject))
}

func TestModerateRejectsUnknownAction(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, c.Moderate(context.Background(), 1, core.ModerationAction("delete")))
}
