package ports

import (
	"context"

	"notesfrais/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseLister fetches the full record set visible to the viewer.
	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
	}

	// ReceiptScanner uploads a receipt image to the OCR endpoint.
	ReceiptScanner interface {
		ScanReceipt(ctx context.Context, file core.ReceiptFile) (core.ScanResult, error)
	}

	// Moderator dispatches admin transitions. Responses are not inspected.
	Moderator interface {
		Moderate(ctx context.Context, id int64, action core.ModerationAction) error
	}

	// ScanRecorder keeps scan attempts for later diagnosis.
	ScanRecorder interface {
		RecordScan(ctx context.Context, entry core.ScanEntry) error
	}

	// EventPublisher announces dispatched moderation requests.
	EventPublisher interface {
		PublishModeration(ctx context.Context, ev core.ModerationEvent) error
	}

	// RowExporter writes a visible row set to an external destination and
	// returns a reference to what it wrote.
	RowExporter interface {
		ExportRows(ctx context.Context, rows []core.ExpenseRecord) (ref string, err error)
	}
)
