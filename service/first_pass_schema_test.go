package service

import (
	"testing"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFirstPassInput(t *testing.T) {
	rec, err := ParseFirstPassInput("")
	require.NoError(t, err)
	assert.Equal(t, dto.InvoiceRecord{}, rec)

	rec, err = ParseFirstPassInput(`{"totalAmountEur": 52.3, "supplyPointCode": "es0021 0000 1234 5678 ab", "note": null}`)
	require.NoError(t, err)
	assert.Equal(t, "52.3", rec.TotalAmountEur)
	assert.Equal(t, "ES0021000012345678AB", rec.SupplyPointCode)

	rec, err = ParseFirstPassInput("consumptionKwh: 300; periodStart: 01.03.2024")
	require.NoError(t, err)
	assert.Equal(t, "300", rec.ConsumptionKwh)
	assert.Equal(t, "01/03/2024", rec.PeriodStart)
}

func TestParseFirstPassInputRejectsNestedValues(t *testing.T) {
	_, err := ParseFirstPassInput(`{"totalAmountEur": {"value": 52.3}}`)
	assert.ErrorIs(t, err, dto.ErrInvalidFirstPass)

	_, err = ParseFirstPassInput(`{"totalAmountEur": true}`)
	assert.ErrorIs(t, err, dto.ErrInvalidFirstPass)

	_, err = ParseFirstPassInput(`{"totalAmountEur": 52,3}`)
	assert.ErrorIs(t, err, dto.ErrInvalidFirstPass)
}
