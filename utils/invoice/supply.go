package invoice

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
)

var (
	supplyPointRe      = regexp.MustCompile(`\bES[0-9A-Z]{18,24}\b`)
	supplyPointExactRe = regexp.MustCompile(`^ES[0-9A-Z]{18,24}$`)
)

// IsSupplyPointCode reports whether code is a well formed CUPS.
func IsSupplyPointCode(code string) bool {
	return supplyPointExactRe.MatchString(code)
}

// CleanSupplyPointCode upper-cases code and drops its spaces.
func CleanSupplyPointCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
}

// SupplyPointCode finds the first CUPS in the document, trying the text with
// spaces removed before the raw text.
func SupplyPointCode(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	if m := supplyPointRe.FindString(strings.ReplaceAll(doc.Text, " ", "")); m != "" {
		return m, true
	}
	if m := supplyPointRe.FindString(doc.Text); m != "" {
		return m, true
	}
	return "", false
}
