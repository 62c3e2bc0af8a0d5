package export

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"notesfrais/internal/core"
	applog "notesfrais/internal/log"
)

// SheetsConfig locates the target tab and the service account.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// Sheets implements ports.RowExporter by replacing the content of one tab.
type Sheets struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// NewSheets authenticates with the service account in cfg.
func NewSheets(ctx context.Context, cfg SheetsConfig, logger *applog.Logger) (*Sheets, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewSheetsWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

// NewSheetsWithService wraps an existing service.
func NewSheetsWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *applog.Logger) *Sheets {
	if logger == nil {
		logger = applog.Discard()
	}
	if sheetName == "" {
		sheetName = "Notes de frais"
	}
	return &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentExport),
	}
}

func newSheetsService(ctx context.Context, cfg SheetsConfig) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newPooledHTTPClient()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: 60 * time.Second,
	}
}

// ExportRows clears the tab and writes the header plus one row per record.
// It returns the A1 range that was written.
func (s *Sheets) ExportRows(ctx context.Context, records []core.ExpenseRecord) (string, error) {
	if s.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := quoteSheet(s.sheetName)

	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, sheet+"!A:H", &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", s.sheetName, err)
	}

	values := make([][]any, 0, len(records)+1)
	values = append(values, toCells(Header))
	for _, r := range records {
		values = append(values, toCells(Row(r)))
	}

	rng := fmt.Sprintf("%s!A1:H%d", sheet, len(values))
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", s.sheetName, err)
	}

	s.logger.InfoContext(ctx, "Rows exported to sheet",
		applog.FieldOperation, applog.OpExport,
		applog.FieldRecords, len(records),
		"range", rng)
	return rng, nil
}

func toCells(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// quoteSheet quotes a tab name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
