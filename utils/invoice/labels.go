package invoice

import (
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
	"github.com/shopspring/decimal"
)

// labelWindowLines is how many lines after a label line are searched.
const labelWindowLines = 5

// AmountAfterLabels looks for the amount printed next to a label. Labels are
// folded keywords. For the first label line that yields anything, the
// largest currency-marked amount in the line and the following lines wins;
// without a currency mark the largest plain number is used. Numbers right
// next to "kWh" and date digits are ignored.
func AmountAfterLabels(doc *ocrtext.Document, labels ...string) (string, bool) {
	return amountNearLabels(doc, labelWindowLines, labels)
}

// AmountOnLabelLine is AmountAfterLabels restricted to the label line.
func AmountOnLabelLine(doc *ocrtext.Document, labels ...string) (string, bool) {
	return amountNearLabels(doc, 0, labels)
}

func amountNearLabels(doc *ocrtext.Document, lookahead int, labels []string) (string, bool) {
	for i, folded := range doc.Folded {
		if !ocrtext.ContainsAny(folded, labels...) {
			continue
		}
		last := i + lookahead
		if last >= len(doc.Lines) {
			last = len(doc.Lines) - 1
		}

		if v, ok := largestInLines(doc.Lines[i:last+1], true); ok {
			return v, true
		}
		if v, ok := largestInLines(doc.Lines[i:last+1], false); ok {
			return v, true
		}
	}
	return "", false
}

func largestInLines(lines []string, withCurrency bool) (string, bool) {
	var (
		best    decimal.Decimal
		bestRaw string
		found   bool
	)
	for _, ln := range lines {
		line := maskDates(ln)
		re := numberRe
		if withCurrency {
			re = anyDecimalCurrencyRe
		}
		for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
			if gluedToWord(line, m[2], m[3]) || nearKwh(line, m[2], m[3], 8) {
				continue
			}
			d, kept, ok := amount(line[m[2]:m[3]])
			if !ok {
				continue
			}
			if !found || d.GreaterThan(best) {
				best, bestRaw, found = d, kept, true
			}
		}
	}
	return bestRaw, found
}

// gluedToWord reports whether the digits of s[start:end] directly follow a
// letter or digit, as in "P1" or the digits of an identifier.
func gluedToWord(s string, start, end int) bool {
	i := start + strings.IndexAny(s[start:end], "0123456789")
	if i <= 0 || i < start {
		return false
	}
	c := s[i-1]
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
