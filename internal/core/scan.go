package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type (
	// Optional is a scalar JSON value that may be missing, null, a string or
	// a number. Numbers keep their literal text.
	Optional struct {
		Value string
		Valid bool
	}

	// ScanResult is the structured answer of the receipt OCR endpoint.
	ScanResult struct {
		Amount    Optional `json:"amount"`
		AmountHT  Optional `json:"amount_ht"`
		TVAAmount Optional `json:"tva_amount"`
		Date      Optional `json:"date"`
		Label     Optional `json:"label"`
		RawText   Optional `json:"raw_text"`
		Error     Optional `json:"error"`
	}

	// ReceiptFile is the image selected for scanning.
	ReceiptFile struct {
		Name        string
		ContentType string
		Data        []byte
	}

	ModerationAction string

	// ModerationEvent records that an approve or reject request was dispatched.
	ModerationEvent struct {
		ExpenseID int64            `json:"expense_id"`
		Action    ModerationAction `json:"action"`
		Actor     string           `json:"actor,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}

	// ScanEntry is one journaled scan attempt.
	ScanEntry struct {
		ID        string
		FileName  string
		Outcome   string
		Message   string
		Applied   []string
		RawText   string
		CreatedAt time.Time
	}
)

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
)

// Some returns a present value.
func Some(v string) Optional { return Optional{Value: v, Valid: true} }

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (o *Optional) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*o = Optional{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = Optional{Value: s, Valid: true}
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		*o = Optional{}
		return nil
	}
	*o = Optional{Value: string(b), Valid: true}
	return nil
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Present reports whether the value exists and is not blank.
func (o Optional) Present() bool {
	return o.Valid && strings.TrimSpace(o.Value) != ""
}

// Failed reports whether the endpoint populated its error field.
func (r ScanResult) Failed() bool {
	return r.Error.Present()
}

// Valid reports whether the action is one the admin endpoints accept.
func (a ModerationAction) Valid() bool {
	return a == ActionApprove || a == ActionReject
}
