package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQualityReport(t *testing.T) {
	text := "Periodo 01/03/2024 - 31/03/2024\n" +
		"Consumo total\n" +
		"1.234 kWh\n" +
		"1 m3 = 11,7 kWh\n" +
		"Total factura 52,30 €\n" +
		"Ã©Ã±Ã¡Ã³Ã­Ãº ruido"

	report := BuildQualityReport(text)

	assert.Equal(t, len([]rune(text)), report.CharCount)
	assert.Greater(t, report.DigitRatio, 0.0)
	assert.Greater(t, report.NonASCIIRatio, 0.0)
	assert.True(t, report.KeywordCoverage["total factura"])
	assert.True(t, report.KeywordCoverage["€"])
	assert.False(t, report.KeywordCoverage["cups"])
	assert.Equal(t, []string{"Ã©Ã±Ã¡Ã³Ã­Ãº ruido"}, report.SuspiciousLines)

	if assert.NotEmpty(t, report.KwhCandidates) {
		assert.Equal(t, "1234", report.KwhCandidates[0].Value)
		assert.True(t, strings.HasPrefix(report.KwhCandidates[0].Window, "Consumo total 1.234 kWh"))
	}
	for _, c := range report.KwhCandidates {
		assert.NotContains(t, c.Window, "m3")
	}
	assert.Equal(t, text, report.SampleHead)
	assert.Equal(t, text, report.SampleTail)
}

func TestBuildQualityReportEmpty(t *testing.T) {
	report := BuildQualityReport("")

	assert.Zero(t, report.CharCount)
	assert.Zero(t, report.Score)
	assert.Empty(t, report.KwhCandidates)
	assert.Empty(t, report.SuspiciousLines)
}
