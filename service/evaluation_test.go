package service

import (
	"testing"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	expected := dto.InvoiceRecord{
		PeriodStart:        "01/03/2024",
		PeriodEnd:          "31/03/2024",
		SupplyPointCode:    "ES0021000012345678AB",
		ConsumptionKwh:     "300",
		EnergyCostEur:      "36.00",
		TotalAmountEur:     "52.30",
		PowerExcessCostEur: "",
	}
	predicted := dto.InvoiceRecord{
		PeriodStart:        "1/3/24",
		PeriodEnd:          "30/03/2024",
		SupplyPointCode:    "ES0021000012345678AB",
		ConsumptionKwh:     "300,004",
		EnergyCostEur:      "36,05",
		TotalAmountEur:     " 52.3 ",
		PowerExcessCostEur: "",
	}

	res := Evaluate(predicted, expected)

	assert.Equal(t, 7, res.Total)
	assert.Equal(t, 5, res.Correct)
	assert.InDelta(t, 5.0/7.0, res.Accuracy, 1e-9)
	assert.False(t, res.AllCorrect())

	byField := map[string]dto.FieldVerdict{}
	for _, v := range res.Fields {
		byField[v.Field] = v
	}
	assert.True(t, byField[dto.FieldPeriodStart].OK)
	assert.False(t, byField[dto.FieldPeriodEnd].OK)
	assert.True(t, byField[dto.FieldConsumptionKwh].OK)
	assert.False(t, byField[dto.FieldEnergyCostEur].OK)
	assert.Equal(t, "52.3", byField[dto.FieldTotalAmountEur].Predicted)
	assert.True(t, byField[dto.FieldPowerExcessCostEur].OK)
}

func TestEvaluateSupplyPointIsExact(t *testing.T) {
	res := Evaluate(
		dto.InvoiceRecord{SupplyPointCode: "es0021000012345678ab"},
		dto.InvoiceRecord{SupplyPointCode: "ES0021000012345678AB"},
	)
	assert.Equal(t, 6, res.Correct)
}
