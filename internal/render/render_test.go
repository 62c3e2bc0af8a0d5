package render

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesfrais/internal/core"
	appweb "notesfrais/web"
)

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		status  core.Status
		label   string
		variant string
	}{
		{core.StatusPending, "En attente", VariantNeutral},
		{core.StatusApproved, "Validée", VariantPositive},
		{core.StatusRejected, "Refusée", VariantNegative},
		{"APPROVED", "Validée", VariantPositive},
		{"archived", "En attente", VariantNeutral},
		{"", "En attente", VariantNeutral},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			b := BadgeFor(tt.status)
			assert.Equal(t, tt.label, b.Label)
			assert.Equal(t, tt.variant, b.Variant)
		})
	}
}

func TestResolveReceipt(t *testing.T) {
	tests := []struct {
		name, ref, base, want string
	}{
		{name: "absent", ref: "", base: "/uploads/", want: ""},
		{name: "relative", ref: "ticket_1.jpg", base: "/uploads/", want: "/uploads/ticket_1.jpg"},
		{name: "relative with default base", ref: "a.png", base: "", want: "/uploads/a.png"},
		{name: "absolute https", ref: "https://res.cloudinary.com/x/image/upload/v1/a.jpg", base: "/uploads/", want: "https://res.cloudinary.com/x/image/upload/v1/a.jpg"},
		{name: "absolute http", ref: "http://cdn.example.com/a.jpg", base: "/files/", want: "http://cdn.example.com/a.jpg"},
		{name: "name with space is escaped", ref: "mon ticket.jpg", base: "/uploads/", want: "/uploads/mon%20ticket.jpg"},
		{name: "traversal stays under base", ref: "../secret", base: "/uploads/", want: "/uploads/secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveReceipt(tt.ref, tt.base))
		})
	}
}

func TestBuildRows(t *testing.T) {
	records := []core.ExpenseRecord{
		{ID: 3, Date: "2024-03-02", Amount: core.NewAmount("12.5"), Status: core.StatusApproved, ValidatedBy: "boss@x.fr", ValidatedAt: "2024-03-05T10:22:00"},
		{ID: 1, Date: "2024-03-01", Amount: core.NewAmount("oops"), Status: "mystery", ReceiptPath: "r.jpg"},
		{ID: 2, Date: "2024-03-03", Amount: core.NewAmount("7"), Status: core.StatusRejected, ValidatedBy: "boss@x.fr"},
	}

	rows := BuildRows(records, Options{UploadsBase: "/uploads/"})
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{rows[0].ID, rows[1].ID, rows[2].ID}, "input order kept")

	assert.Equal(t, "12.50 €", rows[0].Amount)
	assert.Equal(t, "par boss@x.fr le 2024-03-05", rows[0].Annotation)
	assert.Empty(t, rows[0].ReceiptURL)

	assert.Equal(t, "0.00 €", rows[1].Amount)
	assert.Equal(t, core.StatusPending, rows[1].Status)
	assert.Equal(t, "En attente", rows[1].Badge.Label)
	assert.Equal(t, "/uploads/r.jpg", rows[1].ReceiptURL)

	assert.Empty(t, rows[2].Annotation, "no timestamp, no annotation")
	for _, r := range rows {
		assert.Empty(t, r.Actions, "non-admin viewers get no actions")
	}
}

func TestBuildRowsAdminActions(t *testing.T) {
	records := []core.ExpenseRecord{
		{ID: 1, Status: core.StatusPending},
		{ID: 2, Status: core.StatusApproved},
		{ID: 3, Status: core.StatusRejected},
		{ID: 4, Status: "weird"},
	}
	rows := BuildRows(records, Options{IsAdmin: true})

	kinds := func(r Row) []core.ModerationAction {
		var out []core.ModerationAction
		for _, a := range r.Actions {
			out = append(out, a.Kind)
		}
		return out
	}
	assert.Equal(t, []core.ModerationAction{core.ActionApprove, core.ActionReject}, kinds(rows[0]))
	assert.Equal(t, []core.ModerationAction{core.ActionReject}, kinds(rows[1]))
	assert.Equal(t, []core.ModerationAction{core.ActionApprove}, kinds(rows[2]))
	assert.Equal(t, []core.ModerationAction{core.ActionApprove, core.ActionReject}, kinds(rows[3]))
	assert.Equal(t, "/admin/expenses/2/reject", rows[1].Actions[0].URL)
}

func pageTemplates(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	require.NoError(t, err)
	return tmpl
}

func TestHTMLBody(t *testing.T) {
	h, err := NewHTML(pageTemplates(t))
	require.NoError(t, err)

	rows := BuildRows([]core.ExpenseRecord{
		{ID: 9, Date: "2024-03-01", Amount: core.NewAmount("5"), Label: "<b>Café</b>", Chantier: "Lyon", Status: "unknown", ReceiptPath: "https://cdn.example.com/t.jpg"},
		{ID: 8, Date: "2024-02-01", Amount: core.NewAmount("3"), Status: core.StatusApproved},
	}, Options{IsAdmin: true})

	var buf bytes.Buffer
	require.NoError(t, h.Body(&buf, rows))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "<tr "))
	assert.Less(t, strings.Index(out, `data-id="9"`), strings.Index(out, `data-id="8"`))
	assert.Contains(t, out, "&lt;b&gt;Café&lt;/b&gt;")
	assert.Contains(t, out, "badge-neutral")
	assert.Contains(t, out, `href="https://cdn.example.com/t.jpg"`)
	assert.Contains(t, out, "<td>-</td>")
	assert.Contains(t, out, `action="/admin/expenses/9/approve"`)
	assert.NotContains(t, out, `/admin/expenses/8/approve`)
}

func TestHTMLBodyEmpty(t *testing.T) {
	h, err := NewHTML(pageTemplates(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.Body(&buf, nil))
	assert.Contains(t, buf.String(), "Aucune note de frais.")
}

func TestNewHTMLRequiresRowsTemplate(t *testing.T) {
	_, err := NewHTML(template.Must(template.New("other").Parse("x")))
	assert.Error(t, err)
	_, err = NewHTML(nil)
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	out := Text(BuildRows([]core.ExpenseRecord{
		{ID: 4, Date: "2024-03-01", Amount: core.NewAmount("12.5"), Label: "Repas", Status: core.StatusRejected, ValidatedBy: "boss@x.fr", ValidatedAt: "2024-03-02 08:00"},
	}, Options{}))

	for _, want := range []string{"Date", "Montant", "2024-03-01", "12.50 €", "Repas", "Refusée", "par boss@x.fr le 2024-03-02", "-"} {
		assert.Contains(t, out, want)
	}
}
