package ingest

// convert.go coerces the untyped numeric fields of an extracted Record
// into decimals. Extraction output is messy: numbers arrive as JSON
// numbers, numeric strings with currency symbols or thousands
// separators, nulls, or outright garbage. Per the degrade-to-zero
// policy, anything unparsable coerces to zero and is reported to the
// caller as a soft condition rather than an error.

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex validates a string after currency cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Amount converts an untyped Record field to a decimal.
// ok is false when the value is absent (nil) or unparsable; the
// returned decimal is zero in both cases. Callers that care about the
// absent/garbage distinction should check Present first.
func Amount(v any) (d decimal.Decimal, ok bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		return parseAmount(x.String())
	case decimal.Decimal:
		return x, true
	case string:
		return parseAmount(x)
	default:
		return decimal.Zero, false
	}
}

// AmountOr converts like Amount but substitutes def when the value is
// absent or unparsable.
func AmountOr(v any, def decimal.Decimal) decimal.Decimal {
	d, ok := Amount(v)
	if !ok {
		return def
	}
	return d
}

// Present reports whether a Record field carries a usable value: not
// nil, not an empty string. A present-but-garbage value still counts
// as present; coercion decides what it is worth.
func Present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	default:
		return true
	}
}

// parseAmount parses a numeric string, tolerating currency symbols,
// thousands separators, and accounting-format negatives "(123.45)".
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if neg {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// IntOr converts an untyped field to an int, substituting def when the
// value is absent or unparsable. Fractional values truncate.
func IntOr(v any, def int) int {
	d, ok := Amount(v)
	if !ok {
		return def
	}
	return int(d.IntPart())
}
