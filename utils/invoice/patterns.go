package invoice

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
	"github.com/shopspring/decimal"
)

// Regular expression fragments shared by the extractors. Grouping uses '.'
// or a space, never a line break, or ',' ahead of a '.' decimal part.
//
// leftEdge keeps a number from starting right after a letter or digit, so
// the "1" of a "P1" tag never becomes the first group of "P1 120". It is
// not captured; only whole-match offsets include it.
const (
	leftEdge     = `(?:^|[^\pL\pN])`
	signPart     = `[-−–]?\s*`
	moneyPart    = `(?:\d{1,3}(?:,\d{3})+\.\d{2}|(?:\d{1,3}(?:[. ]\d{3})+|\d+)[.,]\d{2})`
	decimalPart  = `(?:\d{1,3}(?:,\d{3})+\.\d+|(?:\d{1,3}(?:[. ]\d{3})+|\d+)[.,]\d+)`
	numberPart   = `(?:\d{1,3}(?:,\d{3})+\.\d+|\d{1,3}(?:[. ]\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?)`
	currencyPart = `\s*(?:€|(?i:eur(?:os)?)\b)`
	kwhToken     = `(?i:k\W*w\W*h)\b`
	datePart     = `\d{1,2}[./-]\d{1,2}[./-]\d{2,4}`
)

var (
	// moneyCurrencyRe is a two-decimal amount followed by a currency mark.
	moneyCurrencyRe = regexp.MustCompile(leftEdge + `(` + signPart + moneyPart + `)` + currencyPart)
	// moneyRe is a two-decimal amount with or without currency.
	moneyRe = regexp.MustCompile(leftEdge + `(` + signPart + moneyPart + `)\b`)
	// anyDecimalCurrencyRe allows any number of decimals before the currency.
	anyDecimalCurrencyRe = regexp.MustCompile(leftEdge + `(` + signPart + decimalPart + `)` + currencyPart)
	// numberCurrencyRe is any signed number followed by a currency mark.
	numberCurrencyRe = regexp.MustCompile(leftEdge + `(` + signPart + numberPart + `)` + currencyPart)
	// numberRe is any signed number.
	numberRe = regexp.MustCompile(leftEdge + `(` + signPart + numberPart + `)`)
	// numberKwhRe is a number directly followed by a literal kWh.
	numberKwhRe = regexp.MustCompile(`(?i)` + leftEdge + `(` + numberPart + `)\s*kwh\b`)

	dateRe       = regexp.MustCompile(datePart)
	periodTagRe  = regexp.MustCompile(`\bp\d\b`)
	equivalentRe = regexp.MustCompile(`equivalen\w*|1\s*gj\b|gj\s*=|kwh/m|m3\b`)
)

// IsEquivalenceLine spots conversion footnotes such as "1 m3 = 11,7 kWh".
func IsEquivalenceLine(s string) bool {
	folded := ocrtext.Fold(s)
	if equivalentRe.MatchString(folded) {
		return true
	}
	return strings.Contains(folded, "=") && strings.Contains(folded, "kwh")
}

// maskDates blanks out date-looking runs so their digits cannot be read as
// amounts. Offsets are preserved.
func maskDates(s string) string {
	return dateRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

// nearKwh reports whether "kwh" appears within pad bytes of s[start:end].
func nearKwh(s string, start, end, pad int) bool {
	return strings.Contains(strings.ToLower(ocrtext.Slice(s, start-pad, end+pad)), "kwh")
}

// amount normalizes a matched amount, keeping its decimals.
func amount(raw string) (decimal.Decimal, string, bool) {
	kept := localeformat.KeepDecimals(raw)
	if kept == "" {
		return decimal.Zero, "", false
	}
	d, ok := localeformat.ParseCanonical(kept)
	return d, kept, ok
}

// kwhQuantity parses a consumption figure as printed in the document and
// validates it with checkKwh.
func kwhQuantity(raw string, th *Thresholds, allowNegative bool) (decimal.Decimal, bool) {
	d, ok := localeformat.ParseAmount(strings.ReplaceAll(raw, " ", ""))
	if !ok {
		return decimal.Zero, false
	}
	return checkKwh(d, th, allowNegative)
}

// checkKwh requires 1 <= |d| <= MaxKwhPerPeriod. The sign is kept only when
// allowNegative is set.
func checkKwh(d decimal.Decimal, th *Thresholds, allowNegative bool) (decimal.Decimal, bool) {
	if d.IsNegative() && !allowNegative {
		return decimal.Zero, false
	}
	mag := d.Abs()
	if mag.LessThan(decimal.NewFromInt(1)) || mag.GreaterThan(th.maxKwh()) {
		return decimal.Zero, false
	}
	return d, true
}

// sumString formats a strategy total, or "" when it does not exceed min.
func sumString(total decimal.Decimal, min float64) string {
	if total.GreaterThan(decimal.NewFromFloat(min)) {
		return localeformat.FormatAmount(total)
	}
	return ""
}
