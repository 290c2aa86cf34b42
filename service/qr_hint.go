package service

import (
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRHint is what a tax-agency invoice QR code tells about the invoice.
type QRHint struct {
	URL      string
	Total    string
	IssuedOn string
	Serial   string
}

// decodeQR looks for a QR code in img and returns its payload.
func decodeQR(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}
	return result.GetText(), nil
}

// ParseQRHint reads the verification URL printed on Spanish invoices
// (VeriFactu "importe", TicketBAI "i"). Payloads without an amount are
// ignored.
func ParseQRHint(payload string) (QRHint, bool) {
	u, err := url.Parse(strings.TrimSpace(payload))
	if err != nil || u.RawQuery == "" {
		return QRHint{}, false
	}
	q := u.Query()

	raw := q.Get("importe")
	if raw == "" {
		raw = q.Get("i")
	}
	amount, ok := localeformat.ParseAmount(raw)
	if !ok {
		return QRHint{}, false
	}

	return QRHint{
		URL:      payload,
		Total:    localeformat.FormatAmount(amount),
		IssuedOn: localeformat.NormalizeDate(q.Get("fecha")),
		Serial:   q.Get("numserie"),
	}, true
}

// FindQRHint returns the first parseable invoice QR code among images.
func FindQRHint(images []image.Image) (QRHint, bool) {
	for _, img := range images {
		payload, err := decodeQR(img)
		if err != nil {
			continue
		}
		if hint, ok := ParseQRHint(payload); ok {
			return hint, true
		}
	}
	return QRHint{}, false
}

// Apply fills the first-pass total from the QR amount when it is missing.
func (h QRHint) Apply(fp dto.InvoiceRecord) dto.InvoiceRecord {
	if fp.TotalAmountEur == "" && h.Total != "" {
		fp.TotalAmountEur = h.Total
	}
	return fp
}
