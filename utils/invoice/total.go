package invoice

import (
	"regexp"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
)

var totalInvoiceRe = regexp.MustCompile(`\btotal\s*factura\b`)

// totalLabels are the generic labels tried when "Total factura" is absent.
var totalLabels = []string{"total a pagar", "importe total", "total a abonar", "totalfactura"}

// TotalInvoiceStrict reads the amount following "Total factura". A
// currency-marked amount within the next 200 characters is preferred over
// the first plain number.
func TotalInvoiceStrict(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	loc := totalInvoiceRe.FindStringIndex(doc.FoldedFlat)
	if loc == nil {
		return "", false
	}
	window := maskDates(ocrtext.Slice(doc.FoldedFlat, loc[1], loc[1]+200))

	if m := numberCurrencyRe.FindStringSubmatch(window); m != nil {
		if v := localeformat.KeepDecimals(m[1]); v != "" {
			return v, true
		}
	}
	if m := numberRe.FindStringSubmatch(window); m != nil {
		if v := localeformat.KeepDecimals(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}

// TotalByLabel reads the total next to a generic payable-amount label.
func TotalByLabel(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	return AmountAfterLabels(doc, totalLabels...)
}
