package invoice

import (
	"regexp"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
)

// periodPatterns are tried in order against the flattened text; each
// captures the start and end dates.
var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PERIODO\s+(` + datePart + `)\s*[-–]\s*(` + datePart + `)`),
	regexp.MustCompile(`(?i)periodo\s+(?:de\s+)?(?:facturaci\S*|consumo)\D{0,40}?(` + datePart + `)\s*(?:a|al|hasta|[-–])\s*(` + datePart + `)`),
	regexp.MustCompile(`(?i)\bdel\s+(` + datePart + `)\s+al\s+(` + datePart + `)`),
}

// BillingPeriod returns the start and end of the billing period. A range
// whose end precedes its start is skipped.
func BillingPeriod(doc *ocrtext.Document, _ *Thresholds) (string, string, bool) {
	for _, re := range periodPatterns {
		for _, m := range re.FindAllStringSubmatch(doc.Flat, -1) {
			start, okStart := localeformat.ParseDate(m[1])
			end, okEnd := localeformat.ParseDate(m[2])
			if !okStart || !okEnd || end.Before(start) {
				continue
			}
			return start.Format(localeformat.DateLayout), end.Format(localeformat.DateLayout), true
		}
	}
	return "", "", false
}
