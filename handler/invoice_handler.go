package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/service"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	maxFileSize    int64
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, maxFileSize int64) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		maxFileSize:    maxFileSize,
	}
}

// RegisterRoutes mounts the invoice endpoints under api.
func (h *InvoiceHandler) RegisterRoutes(api *gin.RouterGroup) {
	invoices := api.Group("/invoices")
	{
		invoices.POST("/extract", h.Extract)
		invoices.POST("/extract-text", h.ExtractText)
		invoices.POST("/batch", h.Batch)
		invoices.POST("/evaluate", h.Evaluate)
		invoices.POST("/quality-report", h.QualityReport)
	}
}

// Extract handles POST /invoices/extract
func (h *InvoiceHandler) Extract(c *gin.Context) {
	log.Println("Received invoice extraction request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "File is required", dto.ErrMissingFile)
		return
	}

	request := &dto.ExtractRequest{
		File:      fileHeader,
		FirstPass: c.PostForm("first_pass"),
	}
	if err := request.Validate(h.maxFileSize); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	firstPass, err := service.ParseFirstPassInput(request.FirstPass)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid first_pass", err)
		return
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to read file", err)
		return
	}

	response, err := h.invoiceService.ProcessDocument(c.Request.Context(), fileHeader.Filename, data, firstPass)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	log.Printf("Invoice extraction completed for %s", fileHeader.Filename)
	c.JSON(http.StatusOK, response)
}

// ExtractText handles POST /invoices/extract-text
func (h *InvoiceHandler) ExtractText(c *gin.Context) {
	var request dto.ExtractTextRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	response, err := h.invoiceService.ExtractFromText(request)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Batch handles POST /invoices/batch
func (h *InvoiceHandler) Batch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	if len(files) == 0 {
		h.sendError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	docs := make([]dto.DocumentInput, 0, len(files))
	for _, file := range files {
		if err := dto.ValidateUpload(file.Filename, file.Size, h.maxFileSize); err != nil {
			h.sendError(c, http.StatusBadRequest, file.Filename, fmt.Errorf("%s: %w", file.Filename, err))
			return
		}
		data, err := readUpload(file)
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Failed to read file", err)
			return
		}
		docs = append(docs, dto.DocumentInput{Filename: file.Filename, Data: data})
	}

	log.Printf("Processing batch of %d files", len(docs))
	c.JSON(http.StatusOK, h.invoiceService.ExtractBatch(c.Request.Context(), docs))
}

// Evaluate handles POST /invoices/evaluate
func (h *InvoiceHandler) Evaluate(c *gin.Context) {
	var request dto.EvaluateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c.JSON(http.StatusOK, service.Evaluate(request.Predicted, request.Expected))
}

// QualityReport handles POST /invoices/quality-report
func (h *InvoiceHandler) QualityReport(c *gin.Context) {
	var request dto.QualityReportRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c.JSON(http.StatusOK, h.invoiceService.QualityReport(request.Text))
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *InvoiceHandler) sendServiceError(c *gin.Context, err error) {
	if errors.Is(err, dto.ErrEmptyText) {
		h.sendError(c, http.StatusUnprocessableEntity, "No text could be extracted", err)
		return
	}
	h.sendError(c, http.StatusInternalServerError, "Failed to extract invoice", err)
}

// sendError sends a structured error response
func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	code := "EXTRACTION_FAILED"
	switch statusCode {
	case http.StatusBadRequest:
		code = "INVALID_REQUEST"
	case http.StatusUnprocessableEntity:
		code = "NO_TEXT_EXTRACTED"
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}
