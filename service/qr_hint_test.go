package service

import (
	"image"
	"testing"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeQR(t *testing.T, payload string) image.Image {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 300, 300, nil)
	require.NoError(t, err)
	return matrix
}

func TestParseQRHint(t *testing.T) {
	hint, ok := ParseQRHint("https://www2.agenciatributaria.gob.es/wlpl/TIKE-CONT/ValidarQR?nif=89890001K&numserie=12345678-G33&fecha=01-09-2024&importe=241.4")
	require.True(t, ok)
	assert.Equal(t, "241.40", hint.Total)
	assert.Equal(t, "01/09/2024", hint.IssuedOn)
	assert.Equal(t, "12345678-G33", hint.Serial)

	hint, ok = ParseQRHint("https://tbai.egoitza.gipuzkoa.eus/qr/?id=TBAI-00000006Y-251019-btFpwP8dcLGAF-237&s=T&nf=27174&i=4.70&cr=007")
	require.True(t, ok)
	assert.Equal(t, "4.70", hint.Total)

	_, ok = ParseQRHint("BEGIN:VCARD")
	assert.False(t, ok)
	_, ok = ParseQRHint("https://example.com/?importe=abc")
	assert.False(t, ok)
}

func TestFindQRHint(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 64, 64))
	qr := encodeQR(t, "https://www2.agenciatributaria.gob.es/wlpl/TIKE-CONT/ValidarQR?nif=B00000000&numserie=A-7&fecha=15-02-2024&importe=1234.56")

	hint, ok := FindQRHint([]image.Image{blank, qr})
	require.True(t, ok)
	assert.Equal(t, "1234.56", hint.Total)

	_, ok = FindQRHint([]image.Image{blank})
	assert.False(t, ok)
}

func TestQRHintApply(t *testing.T) {
	hint := QRHint{Total: "52.30"}

	assert.Equal(t, "52.30", hint.Apply(dto.InvoiceRecord{}).TotalAmountEur)
	assert.Equal(t, "60", hint.Apply(dto.InvoiceRecord{TotalAmountEur: "60"}).TotalAmountEur)
}
