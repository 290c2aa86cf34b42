package ocrtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	in := "Total factura\n\n  1.234,56 €\t\r\nfin"
	assert.Equal(t, "Total factura 1.234,56 € fin", Flatten(in))
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "Energia activa", StripDiacritics("Energía activa"))
	assert.Equal(t, "termino energia facturacion", StripDiacritics("término energía facturación"))
	assert.Equal(t, "45,30 €", StripDiacritics("45,30 €"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "energia reactiva", Fold("ENERGÍA Reactiva"))
}

func TestSliceIsRuneSafe(t *testing.T) {
	s := "a€b"
	// € is three bytes long; cutting inside it must not split the rune.
	assert.Equal(t, "a", Slice(s, 0, 2))
	assert.Equal(t, "a€", Slice(s, 0, 4))
	assert.Equal(t, "a€b", Slice(s, -10, 100))
	assert.Equal(t, "", Slice(s, 3, 1))
}

func TestDocumentWindow(t *testing.T) {
	doc := NewDocument("uno\ndos\ntres\ncuatro")

	assert.Equal(t, "dos tres cuatro", doc.Window(1, 0, 5))
	assert.Equal(t, "uno dos tres", doc.Window(1, 3, 1))
	assert.Equal(t, "cuatro", doc.Window(3, 0, 0))
	assert.Equal(t, "", doc.Window(10, 0, 2))
}

func TestDocumentFolding(t *testing.T) {
	doc := NewDocument("FACTURA RECTIFICATIVA\nEnergía Activa P1")

	assert.True(t, doc.IsCredit())
	assert.Equal(t, "energia activa p1", doc.Folded[1])
	assert.Equal(t, "factura rectificativa energia activa p1", doc.FoldedFlat)
}

func TestNonBlank(t *testing.T) {
	doc := NewDocument("a\n\n  \nb")
	assert.Equal(t, []string{"a", "b"}, doc.NonBlank().Lines)
	assert.False(t, doc.Empty())
	assert.True(t, NewDocument(" \n ").Empty())
}
