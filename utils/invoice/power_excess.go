package invoice

import (
	"regexp"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
	"github.com/shopspring/decimal"
)

var excessLabels = []string{"excesos de potencia", "exceso potencia", "exceso de potencia"}

var (
	kwAmountRe      = regexp.MustCompile(leftEdge + `(` + signPart + `\d{1,3}[.,]\d{1,2})\s*(?i:kw)\b`)
	shortDecimalRe  = regexp.MustCompile(leftEdge + `(` + signPart + `\d{1,3}[.,]\d{1,2})\b`)
	shortFractionRe = regexp.MustCompile(`\.\d{1,2}$`)
	excessFloor     = decimal.NewFromFloat(0.1)
)

// excessLookahead is the number of lines after a power-excess label searched
// for kW amounts.
const excessLookahead = 6

// PowerExcessCost reads the power-excess charge. A label-anchored amount
// wins when it has one or two decimals, looking at the label line before the
// lines after it; bare integers are left to the kW scan.
func PowerExcessCost(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	if v, ok := AmountOnLabelLine(doc, excessLabels...); ok && shortFractionRe.MatchString(v) {
		return v, true
	}
	if v, ok := AmountAfterLabels(doc, excessLabels...); ok && shortFractionRe.MatchString(v) {
		return v, true
	}
	return PowerExcessByKw(doc, th)
}

// PowerExcessByKw scans the lines after a power-excess label for an amount
// written next to "kW". Without one it takes the largest short decimal of
// the window.
func PowerExcessByKw(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	for i, folded := range doc.Folded {
		if !ocrtext.ContainsAny(folded, excessLabels...) {
			continue
		}
		window := maskDates(doc.Window(i, 0, excessLookahead))

		for _, m := range kwAmountRe.FindAllStringSubmatch(window, -1) {
			if d, kept, ok := amount(m[1]); ok && d.GreaterThan(excessFloor) {
				return kept, true
			}
		}

		var (
			best    decimal.Decimal
			bestRaw string
		)
		for _, m := range shortDecimalRe.FindAllStringSubmatchIndex(window, -1) {
			if gluedToWord(window, m[2], m[3]) {
				continue
			}
			d, kept, ok := amount(window[m[2]:m[3]])
			if ok && d.GreaterThan(excessFloor) && (bestRaw == "" || d.GreaterThan(best)) {
				best, bestRaw = d, kept
			}
		}
		if bestRaw != "" {
			return bestRaw, true
		}
	}
	return "", false
}
