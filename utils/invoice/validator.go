package invoice

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
	"github.com/shopspring/decimal"
)

var (
	totalShareLow  = decimal.NewFromFloat(0.10)
	totalShareHigh = decimal.NewFromFloat(1.10)
)

// IsPlausibleCost checks a canonical energy cost candidate against the
// resolved total. It rejects magnitudes not above the configured minimum, a
// sign that disagrees with the total outside credit documents, and
// magnitudes outside 10%..110% of the absolute total.
func IsPlausibleCost(candidate string, total decimal.NullDecimal, doc *ocrtext.Document, th *Thresholds) bool {
	d, ok := localeformat.ParseCanonical(candidate)
	if !ok {
		return false
	}
	mag := d.Abs()
	if mag.LessThanOrEqual(th.minEnergyCost()) {
		return false
	}
	if !total.Valid || total.Decimal.IsZero() {
		return true
	}
	if d.Sign() != total.Decimal.Sign() && !d.IsZero() && !doc.IsCredit() {
		return false
	}
	t := total.Decimal.Abs()
	return mag.GreaterThanOrEqual(t.Mul(totalShareLow)) && mag.LessThanOrEqual(t.Mul(totalShareHigh))
}

// IsPlausiblePricePerUnit requires cost/kWh inside the configured price band.
// Missing operands or a non-positive consumption pass.
func IsPlausiblePricePerUnit(kwh, cost decimal.NullDecimal, th *Thresholds) bool {
	if !kwh.Valid || !cost.Valid || !kwh.Decimal.IsPositive() {
		return true
	}
	return th.inPriceBand(cost.Decimal.Abs().DivRound(kwh.Decimal, 6))
}

var (
	payableForbid    = []string{"reactiva", "acceso", "potencia", "exceso", "servicio", "regularizacion", "alquiler", "peaje", "impuesto"}
	compactPayableRe = regexp.MustCompile(`(?i)kwh\W+\d+(?:[.,]\d+)?\W+(` + signPart + moneyPart + `)` + currencyPart)
)

// payableLookahead is how many lines after an energy label may hold its amount.
const payableLookahead = 5

// HasPayableEnergy reports whether the document bills active energy: an
// energy label line, free of access, reactive and service wording, with a
// currency amount on it or shortly after that is not a unit price. A compact
// "kWh <price> <amount> €" row counts as well.
func HasPayableEnergy(doc *ocrtext.Document) bool {
	nb := doc.NonBlank()
	for i, folded := range nb.Folded {
		if !strings.Contains(folded, "energia") || ocrtext.ContainsAny(folded, payableForbid...) {
			continue
		}
		for j := i; j < len(nb.Lines) && j <= i+payableLookahead; j++ {
			line := nb.Lines[j]
			for _, m := range moneyCurrencyRe.FindAllStringSubmatchIndex(line, -1) {
				span := strings.ToLower(ocrtext.Slice(line, m[2]-8, m[3]+8))
				if strings.Contains(span, "/kwh") {
					continue
				}
				return true
			}
		}
	}
	return compactPayableRe.MatchString(doc.Text)
}
