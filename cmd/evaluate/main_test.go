package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250 ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "42 s", formatDuration(42*time.Second))
	assert.Equal(t, "2 min 5 s", formatDuration(125*time.Second))
	assert.Equal(t, "1 h 0 min 1 s", formatDuration(time.Hour+time.Second))
}

func TestListPDFsAndExpected(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expected.json"), []byte(`{
		"A.pdf": {"fechaDesde": "01/03/2024", "consumo": 300, "total": "52,30"}
	}`), 0o600))

	files, err := listPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf")}, files)

	single, err := listPDFs(files[1])
	require.NoError(t, err)
	assert.Equal(t, files[1:], single)
	assert.Equal(t, dir, baseDir(files[1]))

	expected, err := loadExpected(filepath.Join(dir, "expected.json"))
	require.NoError(t, err)
	rec, ok := lookupExpected(expected, "a.pdf")
	require.True(t, ok)
	assert.Equal(t, "01/03/2024", rec.PeriodStart)
	assert.Equal(t, "300", rec.ConsumptionKwh)
	assert.Equal(t, "52,30", rec.TotalAmountEur)

	missing, err := loadExpected(filepath.Join(dir, "none.json"))
	assert.NoError(t, err)
	assert.Empty(t, missing)
}
