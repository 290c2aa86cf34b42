package localeformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "01/02/2024", NormalizeDate("01.02.2024"))
	assert.Equal(t, "01/02/2024", NormalizeDate("1-2-24"))
	assert.Equal(t, "15/03/2023", NormalizeDate(" 15/03/2023 "))
	assert.Equal(t, "29/02/2024", NormalizeDate("29/02/2024"))
}

func TestNormalizeDateRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"31/02/2024", "29/02/2023", "31/04/2024", "00/01/2024", "12/13/2024", "2024-01-02", "", "hoy"} {
		assert.Equal(t, "", NormalizeDate(raw), raw)
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	for _, raw := range []string{"1.2.24", "31-12-2023", "31/02/2024", "05/06/2025", "garbage"} {
		once := NormalizeDate(raw)
		assert.Equal(t, once, NormalizeDate(once), raw)
	}
}

func TestSameDateAndNumber(t *testing.T) {
	assert.True(t, SameDate("01.02.2024", "1/2/24"))
	assert.False(t, SameDate("01/02/2024", "02/02/2024"))

	assert.True(t, SameNumber("1.234,56", "1234.56", DefaultTolerance))
	assert.True(t, SameNumber("45,301", "45.30", DefaultTolerance))
	assert.False(t, SameNumber("10", "10,02", DefaultTolerance))
	assert.False(t, SameNumber("x", "1", DefaultTolerance))
}
