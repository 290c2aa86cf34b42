package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/service"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/invoice"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceText = `PERIODO 01/03/2024 - 31/03/2024
CUPS: ES0021000012345678AB
Energía activa P1 300 kWh x 0,120000 €/kWh 36,00 €
Total 300 kWh
Total factura 52,30 €`

type stubPDF struct{}

func (stubPDF) ExtractText(data []byte) (string, error) {
	if string(data) == "broken" {
		return "", errors.New("malformed PDF")
	}
	return string(data), nil
}

func (stubPDF) ExtractImages(data []byte) ([]image.Image, error) { return nil, nil }

type stubRecognizer struct{}

func (stubRecognizer) Name() string { return "stub" }

func (stubRecognizer) ExtractTextAndQuality(filePath string) (string, float64, error) {
	return invoiceText, 90, nil
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewInvoiceService(invoice.NewEngine(nil), stubPDF{}, []service.Recognizer{stubRecognizer{}}, 2, false)
	h := NewInvoiceHandler(svc, 1024)

	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

type upload struct {
	field, name, content string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func do(router *gin.Engine, method, path, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestExtractPDF(t *testing.T) {
	router := setupRouter()
	body, ct := multipartBody(t, map[string]string{"first_pass": `{"powerExcessCostEur": "1,50"}`},
		upload{"file", "factura.pdf", invoiceText})

	rec := do(router, http.MethodPost, "/api/v1/invoices/extract", ct, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.ExtractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "embedded", resp.TextSource)
	assert.Equal(t, "ES0021000012345678AB", resp.Record.SupplyPointCode)
	assert.Equal(t, "300", resp.Record.ConsumptionKwh)
	assert.Equal(t, "36.00", resp.Record.EnergyCostEur)
	assert.Equal(t, "52.30", resp.Record.TotalAmountEur)
}

func TestExtractRejectsBadInput(t *testing.T) {
	router := setupRouter()

	body, ct := multipartBody(t, nil)
	rec := do(router, http.MethodPost, "/api/v1/invoices/extract", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, nil, upload{"file", "factura.docx", "x"})
	rec = do(router, http.MethodPost, "/api/v1/invoices/extract", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")

	body, ct = multipartBody(t, nil, upload{"file", "factura.pdf", strings.Repeat("x", 2048)})
	rec = do(router, http.MethodPost, "/api/v1/invoices/extract", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, map[string]string{"first_pass": `{"totalAmountEur": [1]}`}, upload{"file", "factura.pdf", invoiceText})
	rec = do(router, http.MethodPost, "/api/v1/invoices/extract", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractNoText(t *testing.T) {
	router := setupRouter()
	body, ct := multipartBody(t, nil, upload{"file", "factura.pdf", "broken"})

	rec := do(router, http.MethodPost, "/api/v1/invoices/extract", ct, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NO_TEXT_EXTRACTED", resp.Error)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestExtractText(t *testing.T) {
	router := setupRouter()
	payload, _ := json.Marshal(map[string]any{
		"text":     invoiceText,
		"expected": map[string]string{"totalAmountEur": "52.3"},
	})

	rec := do(router, http.MethodPost, "/api/v1/invoices/extract-text", "application/json", bytes.NewBuffer(payload))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ExtractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "52.30", resp.Record.TotalAmountEur)
	require.NotNil(t, resp.Evaluation)
	assert.Equal(t, 7, resp.Evaluation.Total)

	rec = do(router, http.MethodPost, "/api/v1/invoices/extract-text", "application/json", bytes.NewBufferString(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatch(t *testing.T) {
	router := setupRouter()
	body, ct := multipartBody(t, nil,
		upload{"files[]", "a.pdf", invoiceText},
		upload{"files[]", "b.pdf", "broken"},
		upload{"files[]", "c.png", "png bytes"},
	)

	rec := do(router, http.MethodPost, "/api/v1/invoices/batch", ct, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 3)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "b.pdf", resp.Documents[1].Filename)
	assert.NotEmpty(t, resp.Documents[1].Error)

	body, ct = multipartBody(t, nil)
	rec = do(router, http.MethodPost, "/api/v1/invoices/batch", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate(t *testing.T) {
	router := setupRouter()
	payload := `{"predicted": {"totalAmountEur": "52,30"}, "expected": {"totalAmountEur": "52.3"}}`

	rec := do(router, http.MethodPost, "/api/v1/invoices/evaluate", "application/json", bytes.NewBufferString(payload))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Correct)
}

func TestQualityReport(t *testing.T) {
	router := setupRouter()
	payload, _ := json.Marshal(dto.QualityReportRequest{Text: invoiceText})

	rec := do(router, http.MethodPost, "/api/v1/invoices/quality-report", "application/json", bytes.NewBuffer(payload))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.QualityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.KeywordCoverage["cups"])
	assert.NotEmpty(t, resp.KwhCandidates)
}
