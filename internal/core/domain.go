package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// DateLayout is the canonical lexical form of record dates. Lexical and
// chronological order coincide for strings in this form.
const DateLayout = "2006-01-02"

type (
	Status string

	// ExpenseRecord is one expense note as served by the list endpoint.
	// Records are never modified after they are decoded.
	ExpenseRecord struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"`
		Amount      Amount `json:"amount"`
		AmountHT    Amount `json:"amount_ht"`
		TVAAmount   Amount `json:"tva_amount"`
		Label       string `json:"label"`
		Chantier    string `json:"chantier"`
		UserEmail   string `json:"user_email"`
		Status      Status `json:"status"`
		ValidatedBy string `json:"validated_by,omitempty"`
		ValidatedAt string `json:"validated_at,omitempty"`
		ReceiptPath string `json:"receipt_path,omitempty"`
		CreatedAt   string `json:"created_at,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// Normalize maps unknown status values onto pending.
func (s Status) Normalize() Status {
	switch Status(strings.ToLower(strings.TrimSpace(string(s)))) {
	case StatusApproved:
		return StatusApproved
	case StatusRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// HasValidation reports whether both the validator and the validation
// timestamp are known.
func (r ExpenseRecord) HasValidation() bool {
	return strings.TrimSpace(r.ValidatedBy) != "" && strings.TrimSpace(r.ValidatedAt) != ""
}

// ValidatedOn returns the date portion of the validation timestamp.
func (r ExpenseRecord) ValidatedOn() string {
	return DatePrefix(r.ValidatedAt)
}

// DatePrefix returns the first ten characters of an ISO timestamp.
func DatePrefix(ts string) string {
	ts = strings.TrimSpace(ts)
	if len(ts) <= len(DateLayout) {
		return ts
	}
	return ts[:len(DateLayout)]
}

// ValidateDate checks that s is a calendar date in DateLayout form.
func ValidateDate(s string) error {
	if len(s) != len(DateLayout) {
		return ErrInvalidDate
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}
