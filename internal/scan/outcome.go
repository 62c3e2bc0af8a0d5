package scan

import "strings"

// Kind classifies how a scan ended.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindServer     Kind = "server"
	KindPartial    Kind = "partial"
	KindApplied    Kind = "applied"
)

// User-facing messages.
const (
	MsgNoFile        = "Choisis d'abord un fichier à scanner."
	MsgInFlight      = "Un scan est déjà en cours."
	MsgTransport     = "Erreur lors du scan du ticket."
	MsgNothingFound  = "Impossible d'extraire des données de ce ticket."
	MsgApplied       = "Ticket analysé, champs pré-remplis."
	MsgAppliedNoEdit = "Ticket analysé, aucun champ modifié."
)

// Outcome is the result of one scan attempt as shown to the user.
type Outcome struct {
	Kind    Kind
	Message string
	Applied []string
	// RawText is the recognised text, kept for inspection only.
	RawText string
	Err     error
}

// OK reports whether form fields may have been updated.
func (o Outcome) OK() bool {
	return o.Kind == KindApplied
}

// Severity maps the outcome onto a notification level.
func (o Outcome) Severity() string {
	switch o.Kind {
	case KindApplied:
		return "success"
	case KindPartial, KindValidation:
		return "warning"
	default:
		return "error"
	}
}

func (o Outcome) appliedList() string {
	return strings.Join(o.Applied, ",")
}
