package invoice

import (
	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/shopspring/decimal"
)

// Value is a field value that may be unresolved. The zero Value is
// unresolved; it only becomes "" when a record is assembled.
type Value struct {
	text string
	ok   bool
}

// Resolved wraps s, treating "" as unresolved.
func Resolved(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{text: s, ok: true}
}

// Get returns the value and whether it is resolved.
func (v Value) Get() (string, bool) { return v.text, v.ok }

// IsResolved reports whether the value holds a result.
func (v Value) IsResolved() bool { return v.ok }

// String returns the value, or "" when unresolved.
func (v Value) String() string { return v.text }

// Number parses the value as an amount.
func (v Value) Number() decimal.NullDecimal {
	if !v.ok {
		return decimal.NullDecimal{}
	}
	return parseNull(v.text)
}

// parseNull reads a canonical value as produced by the extractors.
func parseNull(s string) decimal.NullDecimal {
	d, ok := localeformat.ParseCanonical(s)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}
