package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scannedInvoice = `
FACTURA DE ELECTRICIDAD
PERIODO 01/03/2024 - 31/03/2024
CUPS: ES 0021 0000 1234 5678 AB
Energía activa P1 120 kWh x 0,150000 €/kWh 18,00 €
Energía activa P2 180 kWh x 0,100000 €/kWh 18,00 €
Total 300 kWh
Exceso de potencia 4,25 €
Total factura 52,30 €
`

var expectedScanned = dto.InvoiceRecord{
	PeriodStart:        "01/03/2024",
	PeriodEnd:          "31/03/2024",
	SupplyPointCode:    "ES0021000012345678AB",
	ConsumptionKwh:     "300",
	EnergyCostEur:      "36.00",
	TotalAmountEur:     "52.30",
	PowerExcessCostEur: "4.25",
}

type fakePDF struct {
	texts  map[string]string
	images []image.Image
}

func (f *fakePDF) ExtractText(data []byte) (string, error) {
	text, ok := f.texts[string(data)]
	if !ok {
		return "", errors.New("not a PDF")
	}
	return text, nil
}

func (f *fakePDF) ExtractImages(data []byte) ([]image.Image, error) {
	return f.images, nil
}

type fakeRecognizer struct {
	text    string
	delay   time.Duration
	calls   atomic.Int32
	running atomic.Int32
	peak    atomic.Int32
}

func (r *fakeRecognizer) Name() string { return "fake" }

func (r *fakeRecognizer) ExtractTextAndQuality(filePath string) (string, float64, error) {
	r.calls.Add(1)
	n := r.running.Add(1)
	defer r.running.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(r.delay)
	if r.text == "" {
		return "", 0, errors.New("nothing recognized")
	}
	return r.text, 87.5, nil
}

func newTestService(pdf PDFProcessor, rec *fakeRecognizer, maxParallel int) *InvoiceService {
	return NewInvoiceService(invoice.NewEngine(nil), pdf, []Recognizer{rec}, maxParallel, false)
}

func TestProcessDocumentEmbeddedText(t *testing.T) {
	rec := &fakeRecognizer{}
	svc := newTestService(&fakePDF{texts: map[string]string{"pdf": scannedInvoice}}, rec, 1)

	resp, err := svc.ProcessDocument(context.Background(), "factura.pdf", []byte("pdf"), dto.InvoiceRecord{})
	require.NoError(t, err)

	assert.Equal(t, SourceEmbedded, resp.TextSource)
	assert.Equal(t, expectedScanned, resp.Record)
	assert.Equal(t, "factura.pdf", resp.Filename)
	assert.NotEmpty(t, resp.RequestID)
	assert.Zero(t, rec.calls.Load())
}

func TestProcessDocumentScannedPDF(t *testing.T) {
	rec := &fakeRecognizer{text: scannedInvoice}
	pdf := &fakePDF{
		texts:  map[string]string{"pdf": ""},
		images: []image.Image{image.NewGray(image.Rect(0, 0, 40, 40))},
	}
	svc := newTestService(pdf, rec, 1)

	resp, err := svc.ProcessDocument(context.Background(), "escaneada.PDF", []byte("pdf"), dto.InvoiceRecord{})
	require.NoError(t, err)

	assert.Equal(t, SourceOCR, resp.TextSource)
	assert.Equal(t, "fake", resp.OCREngine)
	assert.Equal(t, 87.5, resp.Confidence)
	assert.Equal(t, expectedScanned, resp.Record)
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestProcessDocumentImage(t *testing.T) {
	rec := &fakeRecognizer{text: scannedInvoice}
	svc := newTestService(&fakePDF{}, rec, 1)

	resp, err := svc.ProcessDocument(context.Background(), "foto.jpg", []byte("jpeg bytes"), dto.InvoiceRecord{})
	require.NoError(t, err)

	assert.Equal(t, SourceOCR, resp.TextSource)
	assert.Equal(t, "52.30", resp.Record.TotalAmountEur)
	assert.Empty(t, resp.QRTotal)
}

func TestProcessDocumentQRTotalHint(t *testing.T) {
	qr := encodeQR(t, "https://www2.agenciatributaria.gob.es/wlpl/TIKE-CONT/ValidarQR?nif=89890001K&numserie=F-1&fecha=01-04-2024&importe=52.3")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, qr))

	rec := &fakeRecognizer{text: "Consumo 300 kWh\nTérmino energía 36,00 €"}
	svc := newTestService(&fakePDF{}, rec, 1)

	resp, err := svc.ProcessDocument(context.Background(), "ticket.png", buf.Bytes(), dto.InvoiceRecord{})
	require.NoError(t, err)

	assert.Equal(t, "52.30", resp.QRTotal)
	assert.Equal(t, "52.30", resp.Record.TotalAmountEur)
}

func TestProcessDocumentNoText(t *testing.T) {
	svc := newTestService(&fakePDF{texts: map[string]string{"pdf": "  "}}, &fakeRecognizer{}, 1)

	_, err := svc.ProcessDocument(context.Background(), "vacia.pdf", []byte("pdf"), dto.InvoiceRecord{})
	assert.ErrorIs(t, err, dto.ErrEmptyText)
}

func TestExtractFromText(t *testing.T) {
	svc := newTestService(&fakePDF{}, &fakeRecognizer{}, 1)

	resp, err := svc.ExtractFromText(dto.ExtractTextRequest{
		Text:     scannedInvoice,
		Expected: &expectedScanned,
		Debug:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, SourceText, resp.TextSource)
	assert.Equal(t, expectedScanned, resp.Record)
	require.NotNil(t, resp.Evaluation)
	assert.True(t, resp.Evaluation.AllCorrect())
	assert.NotEmpty(t, resp.Trace)

	_, err = svc.ExtractFromText(dto.ExtractTextRequest{Text: " \n"})
	assert.ErrorIs(t, err, dto.ErrEmptyText)
}

func TestExtractFromTextUsesFirstPass(t *testing.T) {
	svc := newTestService(&fakePDF{}, &fakeRecognizer{}, 1)

	resp, err := svc.ExtractFromText(dto.ExtractTextRequest{
		Text:      "Documento sin importes",
		FirstPass: &dto.InvoiceRecord{SupplyPointCode: "ES0021000012345678AB", TotalAmountEur: "80"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ES0021000012345678AB", resp.Record.SupplyPointCode)
	assert.Equal(t, "80", resp.Record.TotalAmountEur)
	assert.Nil(t, resp.Trace)
}

func TestExtractBatchKeepsOrderAndReportsFailures(t *testing.T) {
	pdf := &fakePDF{texts: map[string]string{
		"a": scannedInvoice,
		"c": scannedInvoice,
	}}
	svc := newTestService(pdf, &fakeRecognizer{}, 2)

	resp := svc.ExtractBatch(context.Background(), []dto.DocumentInput{
		{Filename: "a.pdf", Data: []byte("a")},
		{Filename: "b.pdf", Data: []byte("b")},
		{Filename: "c.pdf", Data: []byte("c")},
	})

	require.Len(t, resp.Documents, 3)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "a.pdf", resp.Documents[0].Filename)
	assert.Equal(t, "b.pdf", resp.Documents[1].Filename)
	assert.Equal(t, "c.pdf", resp.Documents[2].Filename)
	assert.NotEmpty(t, resp.Documents[1].Error)
	require.NotNil(t, resp.Documents[2].Record)
	assert.Equal(t, expectedScanned, *resp.Documents[2].Record)
}

func TestExtractBatchBoundsParallelism(t *testing.T) {
	rec := &fakeRecognizer{text: scannedInvoice, delay: 20 * time.Millisecond}
	svc := newTestService(&fakePDF{}, rec, 2)

	docs := make([]dto.DocumentInput, 6)
	for i := range docs {
		docs[i] = dto.DocumentInput{Filename: "scan.png", Data: []byte("img")}
	}
	resp := svc.ExtractBatch(context.Background(), docs)

	assert.Equal(t, 6, resp.Succeeded)
	assert.Equal(t, int32(6), rec.calls.Load())
	assert.LessOrEqual(t, rec.peak.Load(), int32(2))
}

func TestExtractBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(&fakePDF{}, &fakeRecognizer{text: scannedInvoice}, 1)
	resp := svc.ExtractBatch(ctx, []dto.DocumentInput{
		{Filename: "a.png", Data: []byte("a")},
		{Filename: "b.png", Data: []byte("b")},
	})

	assert.Equal(t, 2, resp.Failed)
}
