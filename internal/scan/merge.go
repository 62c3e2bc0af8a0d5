package scan

import (
	"strings"

	"notesfrais/internal/core"
	"notesfrais/internal/form"
)

type writePolicy int

const (
	overwrite writePolicy = iota
	onlyIfEmpty
)

// mergeRule maps one response field onto one form field.
type mergeRule struct {
	field  string
	value  func(core.ScanResult) core.Optional
	parse  func(string) (string, bool)
	policy writePolicy
}

var mergeRules = []mergeRule{
	{field: form.FieldAmount, value: func(r core.ScanResult) core.Optional { return r.Amount }, parse: parseAmount, policy: overwrite},
	{field: form.FieldAmountHT, value: func(r core.ScanResult) core.Optional { return r.AmountHT }, parse: parseAmount, policy: overwrite},
	{field: form.FieldTVAAmount, value: func(r core.ScanResult) core.Optional { return r.TVAAmount }, parse: parseAmount, policy: overwrite},
	{field: form.FieldDate, value: func(r core.ScanResult) core.Optional { return r.Date }, parse: verbatim, policy: overwrite},
	{field: form.FieldLabel, value: func(r core.ScanResult) core.Optional { return r.Label }, parse: verbatim, policy: onlyIfEmpty},
}

func parseAmount(s string) (string, bool) {
	d, err := core.ParseDecimal(s)
	if err != nil {
		return "", false
	}
	return core.FormatFixed(d), true
}

func verbatim(s string) (string, bool) {
	return s, true
}

// mergeResult applies every usable field of res to b. It returns the fields
// written and the number of usable fields, which can be larger when a write
// policy or a missing form field held a value back.
func mergeResult(b form.Binder, res core.ScanResult) (applied []string, usable int) {
	for _, rule := range mergeRules {
		v := rule.value(res)
		if !v.Present() {
			continue
		}
		out, ok := rule.parse(v.Value)
		if !ok {
			continue
		}
		usable++

		if rule.policy == onlyIfEmpty {
			if cur, exists := b.Value(rule.field); exists && strings.TrimSpace(cur) != "" {
				continue
			}
		}
		if b.Set(rule.field, out) {
			applied = append(applied, rule.field)
		}
	}
	return applied, usable
}
