package localeformat

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// wholeNumberRe accepts a single unsigned Spanish or English formatted
	// number. Thousands groups may use '.' or a space, or ',' when a '.'
	// decimal part follows.
	wholeNumberRe = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+\.\d+$|^\d{1,3}(?:[. ]\d{3})*(?:[.,]\d+)?$|^\d+(?:[.,]\d+)?$`)

	// dotGroupingRe is a dot-only thousands grouping such as 1.234 or 12.345.678.
	// A leading zero never starts a grouping, so 0.145 stays a decimal.
	dotGroupingRe = regexp.MustCompile(`^[1-9]\d{0,2}(?:\.\d{3})+$`)

	canonicalRe = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)

	firstNumberRe = regexp.MustCompile(`(?:^|[^\pL\pN])([-−–]?\s*)(\d{1,3}(?:,\d{3})+\.\d+|\d{1,3}(?:[. ]\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?)\b`)
)

var signReplacer = strings.NewReplacer("−", "-", "–", "-", "\u00a0", " ", "\u202f", " ", "\u2009", " ", "\u2007", " ")

// ParseAmount converts a locale formatted number into a decimal.
//
// When both '.' and ',' appear the last one is the decimal point. A lone '.'
// that forms three-digit groups is a thousands separator, otherwise it is
// the decimal point. Malformed input yields false.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(signReplacer.Replace(raw))
	if s == "" {
		return decimal.Zero, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = strings.TrimSpace(s[1:])
	case '+':
		s = strings.TrimSpace(s[1:])
	}
	if !wholeNumberRe.MatchString(s) {
		return decimal.Zero, false
	}

	s = canonicalDigits(strings.ReplaceAll(s, " ", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// ParseCanonical parses a number already in the form KeepDecimals and the
// Format helpers produce: optional '-', digits, '.' as decimal point.
// Unlike ParseAmount it never reads a '.' as thousands grouping.
func ParseCanonical(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !canonicalRe.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// KeepDecimals returns the first signed number found in raw, rewritten with
// '.' as decimal separator and no grouping, keeping the digits after the
// decimal point exactly as written. It returns "" when raw holds no number.
func KeepDecimals(raw string) string {
	m := firstNumberRe.FindStringSubmatch(signReplacer.Replace(raw))
	if m == nil {
		return ""
	}
	sign := ""
	if strings.TrimSpace(m[1]) == "-" {
		sign = "-"
	}
	return sign + canonicalDigits(strings.ReplaceAll(m[2], " ", ""))
}

// canonicalDigits rewrites an unsigned, space-free number to '.' decimal form.
func canonicalDigits(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && dotGroupingRe.MatchString(s):
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// LooksLikeUnitPrice reports whether raw carries more than three decimal
// digits, which is how per-kWh prices are printed.
func LooksLikeUnitPrice(raw string) bool {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	return len(parts) == 2 && len(parts[1]) > 3
}

// FormatQuantity renders a quantity without decimals when it is integral and
// with two decimals otherwise.
func FormatQuantity(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}

// FormatAmount renders a monetary amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
