package service

import (
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
)

var numericFields = map[string]bool{
	dto.FieldConsumptionKwh:     true,
	dto.FieldEnergyCostEur:      true,
	dto.FieldTotalAmountEur:     true,
	dto.FieldPowerExcessCostEur: true,
}

// Evaluate compares predicted against expected field by field. Dates match
// on the calendar day, numbers within one cent or on identical text, and the
// supply point code only on identical text.
func Evaluate(predicted, expected dto.InvoiceRecord) dto.EvaluationResult {
	res := dto.EvaluationResult{Total: len(dto.FieldNames)}
	for _, field := range dto.FieldNames {
		pred := strings.TrimSpace(predicted.Get(field))
		want := strings.TrimSpace(expected.Get(field))

		var ok bool
		switch {
		case field == dto.FieldPeriodStart || field == dto.FieldPeriodEnd:
			ok = localeformat.SameDate(pred, want)
		case numericFields[field]:
			ok = localeformat.SameNumber(pred, want, localeformat.DefaultTolerance) || pred == want
		default:
			ok = pred == want
		}

		res.Fields = append(res.Fields, dto.FieldVerdict{
			Field:     field,
			Predicted: pred,
			Expected:  want,
			OK:        ok,
		})
		if ok {
			res.Correct++
		}
	}
	res.Accuracy = float64(res.Correct) / float64(res.Total)
	return res
}
