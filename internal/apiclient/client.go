// Package apiclient talks to the expense application's JSON and admin
// endpoints on behalf of a page session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"notesfrais/internal/core"
	applog "notesfrais/internal/log"
)

const (
	expensesPath = "/api/expenses"
	scanPath     = "/api/scan_receipt"
	adminPath    = "/admin/expenses/"

	// ReceiptField is the multipart field carrying the receipt image.
	ReceiptField = "receipt"

	maxErrorBody = 64 << 10
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	SessionCookie string
	Timeout       time.Duration
	ScanTimeout   time.Duration
	Logger        *applog.Logger
	// Transport overrides the default round tripper, mainly for tests.
	Transport http.RoundTripper
}

// Client implements ports.ExpenseLister, ports.ReceiptScanner and
// ports.Moderator over HTTP.
type Client struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
	scanClient *http.Client
	adminHTTP  *http.Client
	logger     *applog.Logger
}

// New creates a client for the upstream at opts.BaseURL.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = 90 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		cookie:     opts.SessionCookie,
		httpClient: &http.Client{Timeout: opts.Timeout, Transport: transport},
		scanClient: &http.Client{Timeout: opts.ScanTimeout, Transport: transport},
		adminHTTP: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			// The admin endpoints answer with a redirect to their own page.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger.WithComponent(applog.ComponentAPI),
	}
}

// BaseURL returns the upstream origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListExpenses fetches the full record set.
func (c *Client) ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	const op = "list expenses"
	start := time.Now()

	req, err := c.newRequest(ctx, http.MethodGet, expensesPath, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "Requesting expenses", applog.FieldOperation, applog.OpList)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamFailure(op, resp)
	}

	var records []core.ExpenseRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.DebugContext(ctx, "Expenses fetched",
		applog.FieldOperation, applog.OpList,
		applog.FieldRecords, len(records),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return records, nil
}

// ScanReceipt uploads the receipt as a single-file multipart body and
// decodes the structured answer. A populated error field is returned as a
// *ServerError whatever the status code.
func (c *Client) ScanReceipt(ctx context.Context, file core.ReceiptFile) (core.ScanResult, error) {
	const op = "scan receipt"
	start := time.Now()

	body, contentType, err := receiptBody(file)
	if err != nil {
		return core.ScanResult{}, &TransportError{Op: op, Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, scanPath, body)
	if err != nil {
		return core.ScanResult{}, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "Uploading receipt",
		applog.FieldOperation, applog.OpScan,
		applog.FieldFileName, file.Name,
		applog.FieldFileSize, len(file.Data))

	resp, err := c.scanClient.Do(req)
	if err != nil {
		return core.ScanResult{}, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.ScanResult{}, upstreamFailure(op, resp)
	}

	var result core.ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.ScanResult{}, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if result.Failed() {
		return result, &ServerError{StatusCode: resp.StatusCode, Message: result.Error.Value, RawText: result.RawText.Value}
	}

	c.logger.DebugContext(ctx, "Receipt scanned",
		applog.FieldOperation, applog.OpScan,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return result, nil
}

// Moderate posts an approve or reject form submission for one record. The
// response is drained and discarded; only failures to deliver the request
// are reported.
func (c *Client) Moderate(ctx context.Context, id int64, action core.ModerationAction) error {
	op := "moderate expense"
	if !action.Valid() {
		return fmt.Errorf("%s: unknown action %q", op, action)
	}

	path := adminPath + strconv.FormatInt(id, 10) + "/" + string(action)
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(""))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.adminHTTP.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()

	c.logger.DebugContext(ctx, "Moderation dispatched",
		applog.FieldOperation, string(action),
		applog.FieldExpenseID, id,
		applog.FieldStatusCode, resp.StatusCode)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	return req, nil
}

func receiptBody(file core.ReceiptFile) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := filepath.Base(file.Name)
	if name == "." || name == string(filepath.Separator) {
		name = "receipt"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ReceiptField, name))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create receipt part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write receipt part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

// upstreamFailure classifies a non-success response. Bodies carrying an
// error field become server errors; anything else is a transport error.
func upstreamFailure(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error   core.Optional `json:"error"`
		RawText core.Optional `json:"raw_text"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Present() {
		return &ServerError{StatusCode: resp.StatusCode, Message: payload.Error.Value, RawText: payload.RawText.Value}
	}
	return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
}
