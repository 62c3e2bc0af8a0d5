// Package scan drives the receipt upload and merges the recognised fields
// into the expense form.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"notesfrais/internal/apiclient"
	"notesfrais/internal/core"
	"notesfrais/internal/form"
	applog "notesfrais/internal/log"
	"notesfrais/internal/ports"
)

var (
	ErrNoFile           = errors.New("no receipt selected")
	ErrInFlight         = errors.New("scan already in progress")
	ErrNothingExtracted = errors.New("no usable field in scan result")
)

// State of the trigger control.
type State int

const (
	Idle State = iota
	Uploading
)

func (s State) String() string {
	if s == Uploading {
		return "uploading"
	}
	return "idle"
}

const (
	DefaultLabel = "Scanner le ticket"
	BusyLabel    = "Scan en cours..."
)

// Control is the trigger button as it should be displayed.
type Control struct {
	Label    string
	Disabled bool
}

// Controller owns one scan trigger. At most one upload runs at a time.
type Controller struct {
	scanner  ports.ReceiptScanner
	recorder ports.ScanRecorder
	logger   *applog.Logger
	label    string

	mu      sync.Mutex
	state   State
	control Control
	now     func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder journals every attempt.
func WithRecorder(r ports.ScanRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *applog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithLabel overrides the idle label of the trigger.
func WithLabel(label string) Option {
	return func(c *Controller) { c.label = label }
}

func NewController(scanner ports.ReceiptScanner, opts ...Option) *Controller {
	c := &Controller{
		scanner: scanner,
		logger:  applog.Discard(),
		label:   DefaultLabel,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent(applog.ComponentScan)
	c.control = Control{Label: c.label}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Control returns the trigger's current presentation.
func (c *Controller) Control() Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control
}

// begin is the idle -> uploading transition.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Uploading {
		return false
	}
	c.state = Uploading
	c.control = Control{Label: BusyLabel, Disabled: true}
	return true
}

// finish is the uploading -> idle transition. It restores the trigger.
func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
	c.control = Control{Label: c.label}
}

// Scan uploads the selected receipt and merges the answer into b. Form
// fields are only written when the endpoint answered successfully.
func (c *Controller) Scan(ctx context.Context, b form.Binder) Outcome {
	file, ok := b.File()
	if !ok || len(file.Data) == 0 {
		out := Outcome{Kind: KindValidation, Message: MsgNoFile, Err: ErrNoFile}
		c.logger.InfoContext(ctx, "Scan refused", applog.FieldOperation, applog.OpScan, applog.FieldOutcome, out.Kind)
		return out
	}
	if !c.begin() {
		return Outcome{Kind: KindValidation, Message: MsgInFlight, Err: ErrInFlight}
	}

	out := c.upload(ctx, b, file)
	c.record(ctx, file, out)
	return out
}

func (c *Controller) upload(ctx context.Context, b form.Binder, file core.ReceiptFile) Outcome {
	defer c.finish()

	start := c.now()
	res, err := c.scanner.ScanReceipt(ctx, file)
	if err != nil {
		return c.failure(ctx, file, err)
	}

	applied, usable := mergeResult(b, res)
	out := Outcome{Kind: KindApplied, Applied: applied, RawText: res.RawText.Value}
	switch {
	case usable == 0:
		out.Kind = KindPartial
		out.Message = MsgNothingFound
		out.Err = ErrNothingExtracted
		c.logger.WarnContext(ctx, "Scan returned no usable field",
			applog.FieldOperation, applog.OpMerge,
			applog.FieldFileName, file.Name,
			"raw_text_len", len(out.RawText))
		return out
	case len(applied) == 0:
		out.Message = MsgAppliedNoEdit
	default:
		out.Message = MsgApplied
	}

	c.logger.InfoContext(ctx, "Scan applied",
		applog.FieldOperation, applog.OpMerge,
		applog.FieldFileName, file.Name,
		applog.FieldApplied, out.appliedList(),
		applog.FieldDuration, c.now().Sub(start).Milliseconds())
	return out
}

func (c *Controller) failure(ctx context.Context, file core.ReceiptFile, err error) Outcome {
	var serverErr *apiclient.ServerError
	if errors.As(err, &serverErr) {
		c.logger.WarnContext(ctx, "Scan rejected by server",
			applog.FieldOperation, applog.OpScan,
			applog.FieldFileName, file.Name,
			applog.FieldStatusCode, serverErr.StatusCode,
			applog.FieldError, serverErr.Message)
		return Outcome{Kind: KindServer, Message: serverErr.Message, RawText: serverErr.RawText, Err: err}
	}

	c.logger.ErrorContext(ctx, "Scan request failed",
		applog.FieldOperation, applog.OpScan,
		applog.FieldFileName, file.Name,
		applog.FieldError, err)
	return Outcome{Kind: KindTransport, Message: MsgTransport, Err: err}
}

func (c *Controller) record(ctx context.Context, file core.ReceiptFile, out Outcome) {
	if c.recorder == nil {
		return
	}
	entry := core.ScanEntry{
		ID:        uuid.NewString(),
		FileName:  file.Name,
		Outcome:   string(out.Kind),
		Message:   out.Message,
		Applied:   out.Applied,
		RawText:   out.RawText,
		CreatedAt: c.now().UTC(),
	}
	if out.Err != nil && out.Kind == KindTransport {
		entry.Message = fmt.Sprintf("%s (%v)", out.Message, out.Err)
	}
	if err := c.recorder.RecordScan(ctx, entry); err != nil {
		c.logger.ErrorContext(ctx, "Scan journal write failed",
			applog.FieldOperation, applog.OpRecord,
			applog.FieldError, err)
	}
}
