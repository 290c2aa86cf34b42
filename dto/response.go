package dto

import "errors"

// Custom errors
var (
	ErrEmptyText        = errors.New("no text could be extracted from the document")
	ErrMissingFile      = errors.New("file is required")
	ErrUnsupportedFile  = errors.New("invalid file type. Supported: PDF, PNG, JPG, TIFF")
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrInvalidFirstPass = errors.New("first_pass is not a flat object of string or number values")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractionResponse is the result of extracting one invoice.
type ExtractionResponse struct {
	RequestID   string            `json:"request_id"`
	Filename    string            `json:"filename,omitempty"`
	TextSource  string            `json:"text_source"`
	TextScore   float64           `json:"text_score"`
	OCREngine   string            `json:"ocr_engine,omitempty"`
	Confidence  float64           `json:"ocr_confidence,omitempty"`
	QRTotal     string            `json:"qr_total,omitempty"`
	Record      InvoiceRecord     `json:"record"`
	Trace       []CandidateTrace  `json:"trace,omitempty"`
	Evaluation  *EvaluationResult `json:"evaluation,omitempty"`
	ElapsedMs   int64             `json:"elapsed_ms"`
	ProcessedAt string            `json:"processed_at"`
}

// BatchItem is the outcome of one document of a batch.
type BatchItem struct {
	Filename  string         `json:"filename"`
	Record    *InvoiceRecord `json:"record,omitempty"`
	Error     string         `json:"error,omitempty"`
	ElapsedMs int64          `json:"elapsed_ms"`
}

// BatchResponse lists batch results in upload order.
type BatchResponse struct {
	RequestID   string      `json:"request_id"`
	Documents   []BatchItem `json:"documents"`
	Succeeded   int         `json:"succeeded"`
	Failed      int         `json:"failed"`
	ProcessedAt string      `json:"processed_at"`
}

// FieldVerdict compares one predicted field with its expected value.
type FieldVerdict struct {
	Field     string `json:"field"`
	Predicted string `json:"predicted"`
	Expected  string `json:"expected"`
	OK        bool   `json:"ok"`
}

// EvaluationResult is the per-field comparison of two records.
type EvaluationResult struct {
	Fields   []FieldVerdict `json:"fields"`
	Correct  int            `json:"correct"`
	Total    int            `json:"total"`
	Accuracy float64        `json:"accuracy"`
}

// AllCorrect reports whether every field matched.
func (e EvaluationResult) AllCorrect() bool {
	return e.Correct == e.Total
}

// KwhWindow is a text window around a kWh figure with the number it holds.
type KwhWindow struct {
	Window string `json:"window"`
	Value  string `json:"value"`
}

// QualityReport summarizes how usable an OCR text is for extraction.
type QualityReport struct {
	Score           float64         `json:"score"`
	CharCount       int             `json:"char_count"`
	NonASCIIRatio   float64         `json:"non_ascii_ratio"`
	DigitRatio      float64         `json:"digit_ratio"`
	KeywordCoverage map[string]bool `json:"keyword_coverage"`
	KwhCandidates   []KwhWindow     `json:"kwh_candidates"`
	SuspiciousLines []string        `json:"suspicious_lines"`
	SampleHead      string          `json:"sample_head"`
	SampleTail      string          `json:"sample_tail"`
}
