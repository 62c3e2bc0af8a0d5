// Package render turns a visible record list into presentational rows and
// writes them as an HTML table body or a terminal table.
package render

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"notesfrais/internal/core"
)

// DefaultUploadsBase is where relative receipt references are served from.
const DefaultUploadsBase = "/uploads/"

// Badge variants.
const (
	VariantNeutral  = "neutral"
	VariantPositive = "positive"
	VariantNegative = "negative"
)

type (
	// Options carries viewer capabilities into rendering.
	Options struct {
		IsAdmin     bool
		UploadsBase string
	}

	Badge struct {
		Label   string
		Variant string
	}

	// Action is a moderation control. Submitting it posts to URL.
	Action struct {
		Kind  core.ModerationAction
		Label string
		URL   string
	}

	// Row is the display form of one record.
	Row struct {
		ID          int64
		Date        string
		Amount      string
		AmountValue string
		Label       string
		Chantier    string
		UserEmail   string
		Status      core.Status
		Badge       Badge
		Annotation  string
		ReceiptURL  string
		Actions     []Action
	}
)

var badges = map[core.Status]Badge{
	core.StatusPending:  {Label: "En attente", Variant: VariantNeutral},
	core.StatusApproved: {Label: "Validée", Variant: VariantPositive},
	core.StatusRejected: {Label: "Refusée", Variant: VariantNegative},
}

// BadgeFor maps a status onto its badge. Unknown values get the pending one.
func BadgeFor(s core.Status) Badge {
	return badges[s.Normalize()]
}

// BuildRows derives one row per record, in input order.
func BuildRows(records []core.ExpenseRecord, opts Options) []Row {
	base := opts.UploadsBase
	if base == "" {
		base = DefaultUploadsBase
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		status := r.Status.Normalize()
		row := Row{
			ID:          r.ID,
			Date:        r.Date,
			Amount:      core.FormatCurrency(r.Amount),
			AmountValue: core.FormatFixed(r.Amount.OrZero()),
			Label:       r.Label,
			Chantier:    r.Chantier,
			UserEmail:   r.UserEmail,
			Status:      status,
			Badge:       BadgeFor(status),
			ReceiptURL:  ResolveReceipt(r.ReceiptPath, base),
		}
		if r.HasValidation() {
			row.Annotation = "par " + strings.TrimSpace(r.ValidatedBy) + " le " + r.ValidatedOn()
		}
		if opts.IsAdmin {
			row.Actions = actionsFor(r.ID, status)
		}
		rows = append(rows, row)
	}
	return rows
}

// actionsFor lists the transitions still open from status.
func actionsFor(id int64, status core.Status) []Action {
	var out []Action
	if status != core.StatusApproved {
		out = append(out, Action{Kind: core.ActionApprove, Label: "Valider", URL: ModerationURL(id, core.ActionApprove)})
	}
	if status != core.StatusRejected {
		out = append(out, Action{Kind: core.ActionReject, Label: "Refuser", URL: ModerationURL(id, core.ActionReject)})
	}
	return out
}

// ModerationURL is the admin endpoint path for one transition.
func ModerationURL(id int64, action core.ModerationAction) string {
	return "/admin/expenses/" + strconv.FormatInt(id, 10) + "/" + string(action)
}

// ResolveReceipt returns the link target for a receipt reference. Absolute
// URLs pass through, other references are joined onto base. An empty
// reference yields an empty string.
func ResolveReceipt(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() && u.Host != "" {
		return ref
	}
	if base == "" {
		base = DefaultUploadsBase
	}
	return (&url.URL{Path: path.Join(base, path.Clean("/"+ref))}).String()
}
