package dto

import (
	"mime/multipart"
	"path/filepath"
	"strings"
)

// SupportedExtensions are the upload types the extraction endpoints accept.
var SupportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// ExtractRequest is a single-document upload.
type ExtractRequest struct {
	File      *multipart.FileHeader
	FirstPass string
}

// Validate checks the uploaded file type and size.
func (r *ExtractRequest) Validate(maxSize int64) error {
	if r.File == nil {
		return ErrMissingFile
	}
	return ValidateUpload(r.File.Filename, r.File.Size, maxSize)
}

// ValidateUpload checks one uploaded file by name and size.
func ValidateUpload(filename string, size, maxSize int64) error {
	if !IsSupportedFile(filename) {
		return ErrUnsupportedFile
	}
	if maxSize > 0 && size > maxSize {
		return ErrFileTooLarge
	}
	return nil
}

// IsSupportedFile reports whether filename has a supported extension.
func IsSupportedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ExtractTextRequest runs the engine on already extracted text.
type ExtractTextRequest struct {
	Text      string         `json:"text" binding:"required"`
	FirstPass *InvoiceRecord `json:"first_pass,omitempty"`
	Expected  *InvoiceRecord `json:"expected,omitempty"`
	Debug     bool           `json:"debug,omitempty"`
}

// EvaluateRequest compares a predicted record with the expected one.
type EvaluateRequest struct {
	Predicted InvoiceRecord `json:"predicted"`
	Expected  InvoiceRecord `json:"expected"`
}

// QualityReportRequest asks for an OCR quality report of a text.
type QualityReportRequest struct {
	Text string `json:"text" binding:"required"`
}

// DocumentInput is one document of a batch, already read into memory.
type DocumentInput struct {
	Filename string
	Data     []byte
}
