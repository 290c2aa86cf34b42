package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/invoice"
	"github.com/google/uuid"
)

// Recognizer turns an image file into text with a 0..100 confidence.
type Recognizer interface {
	Name() string
	ExtractTextAndQuality(filePath string) (string, float64, error)
}

type InvoiceService struct {
	engine       *invoice.Engine
	pdfProcessor PDFProcessor
	recognizers  []Recognizer
	maxParallel  int
	debug        bool
}

// NewInvoiceService wires the extraction engine to its text sources.
// Recognizers are tried in order; each produces its own candidate text.
func NewInvoiceService(
	engine *invoice.Engine,
	pdfProcessor PDFProcessor,
	recognizers []Recognizer,
	maxParallel int,
	debug bool,
) *InvoiceService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &InvoiceService{
		engine:       engine,
		pdfProcessor: pdfProcessor,
		recognizers:  recognizers,
		maxParallel:  maxParallel,
		debug:        debug,
	}
}

// ExtractFromText runs the engine on text that was already extracted.
func (s *InvoiceService) ExtractFromText(req dto.ExtractTextRequest) (*dto.ExtractionResponse, error) {
	start := time.Now()
	if strings.TrimSpace(req.Text) == "" {
		return nil, dto.ErrEmptyText
	}

	var firstPass dto.InvoiceRecord
	if req.FirstPass != nil {
		firstPass = *req.FirstPass
	}

	requestID := uuid.NewString()
	resp := s.extract(requestID, TextCandidate{
		Source: SourceText,
		Text:   req.Text,
		Score:  TextQualityScore(req.Text),
	}, firstPass, req.Debug)

	if req.Expected != nil {
		eval := Evaluate(resp.Record, *req.Expected)
		resp.Evaluation = &eval
	}
	resp.ElapsedMs = time.Since(start).Milliseconds()
	return resp, nil
}

// ProcessDocument acquires the text of an uploaded PDF or image and
// extracts the invoice fields from it.
func (s *InvoiceService) ProcessDocument(ctx context.Context, filename string, data []byte, firstPass dto.InvoiceRecord) (*dto.ExtractionResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log.Printf("[%s] Processing %s (%d bytes)", requestID, filename, len(data))

	text, images, err := s.AcquireText(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	resp := s.extract(requestID, text, firstPass, false)
	resp.Filename = filename

	// A missing total may still be printed in the tax-agency QR code.
	if resp.Record.TotalAmountEur == "" {
		if images == nil {
			images = s.documentImages(filename, data)
		}
		if hint, ok := FindQRHint(images); ok {
			log.Printf("[%s] QR code total hint: %s", requestID, hint.Total)
			resp = s.extract(requestID, text, hint.Apply(firstPass), false)
			resp.Filename = filename
			resp.QRTotal = hint.Total
		}
	}

	resp.ElapsedMs = time.Since(start).Milliseconds()
	log.Printf("[%s] Extracted %s from %s text in %d ms", requestID, filename, resp.TextSource, resp.ElapsedMs)
	return resp, nil
}

// AcquireText returns the best text of a document together with any page
// images that had to be decoded on the way.
//
// PDFs use their embedded text first and are OCRed page by page only when
// that text looks poor. Images always go through OCR.
func (s *InvoiceService) AcquireText(ctx context.Context, filename string, data []byte) (TextCandidate, []image.Image, error) {
	var cands []TextCandidate
	var images []image.Image

	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		embedded, err := s.pdfProcessor.ExtractText(data)
		if err != nil {
			log.Printf("PDF text extraction failed for %s: %v", filename, err)
		}
		embedded = CleanText(embedded)
		if embedded != "" {
			cands = append(cands, TextCandidate{
				Source:     SourceEmbedded,
				Text:       embedded,
				Score:      TextQualityScore(embedded),
				Confidence: 100,
			})
		}

		if NeedsRaster(embedded) {
			log.Printf("PDF %s has poor embedded text, attempting image-based OCR", filename)
			images, err = s.pdfProcessor.ExtractImages(data)
			if err != nil {
				log.Printf("Failed to extract images from PDF %s: %v", filename, err)
			}
			ocrCands, err := s.recognizeImages(ctx, images)
			if err != nil {
				return TextCandidate{}, nil, err
			}
			cands = append(cands, ocrCands...)
		}
	} else {
		path, err := writeTempFile(data, filepath.Ext(filename))
		if err != nil {
			return TextCandidate{}, nil, err
		}
		defer os.Remove(path)

		ocrCands, err := s.recognizePaths(ctx, []string{path})
		if err != nil {
			return TextCandidate{}, nil, err
		}
		cands = append(cands, ocrCands...)
	}

	best, ok := ChooseText(cands)
	if !ok || strings.TrimSpace(best.Text) == "" {
		return TextCandidate{}, images, fmt.Errorf("%s: %w", filename, dto.ErrEmptyText)
	}
	return best, images, nil
}

// recognizeImages saves page images once and runs every recognizer on them.
func (s *InvoiceService) recognizeImages(ctx context.Context, images []image.Image) ([]TextCandidate, error) {
	var paths []string
	defer func() {
		for _, p := range paths {
			os.Remove(p)
		}
	}()

	for _, img := range images {
		path, err := saveImageToTempFile(img)
		if err != nil {
			log.Printf("Failed to save temporary image for OCR: %v", err)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return s.recognizePaths(ctx, paths)
}

// recognizePaths OCRs the page files with each recognizer and returns one
// candidate text per recognizer that read anything.
func (s *InvoiceService) recognizePaths(ctx context.Context, paths []string) ([]TextCandidate, error) {
	var cands []TextCandidate
	for _, rec := range s.recognizers {
		var combined strings.Builder
		var totalConf float64
		var pages int

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pageText, conf, err := rec.ExtractTextAndQuality(path)
			if err != nil {
				log.Printf("%s OCR failed for a page: %v", rec.Name(), err)
				continue
			}
			combined.WriteString(pageText)
			combined.WriteString("\n")
			totalConf += conf
			pages++
		}
		if pages == 0 {
			continue
		}

		text := CleanText(combined.String())
		if text == "" {
			continue
		}
		cands = append(cands, TextCandidate{
			Source:     SourceOCR,
			Engine:     rec.Name(),
			Text:       text,
			Score:      TextQualityScore(text),
			Confidence: totalConf / float64(pages),
		})
	}
	return cands, nil
}

// documentImages decodes the images a document holds, for QR lookup.
func (s *InvoiceService) documentImages(filename string, data []byte) []image.Image {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		images, err := s.pdfProcessor.ExtractImages(data)
		if err != nil {
			log.Printf("Failed to extract images from PDF %s: %v", filename, err)
		}
		return images
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return []image.Image{img}
}

func (s *InvoiceService) extract(requestID string, text TextCandidate, firstPass dto.InvoiceRecord, debug bool) *dto.ExtractionResponse {
	record, trace := s.engine.ExtractWithTrace(text.Text, firstPass)
	if s.debug {
		logTrace(requestID, trace)
	}

	resp := &dto.ExtractionResponse{
		RequestID:   requestID,
		TextSource:  text.Source,
		TextScore:   text.Score,
		OCREngine:   text.Engine,
		Confidence:  text.Confidence,
		Record:      record,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}
	if debug || s.debug {
		resp.Trace = trace
	}
	return resp
}

// ExtractBatch processes documents with at most maxParallel running at once.
// Results keep the input order; a failed document does not stop the others.
func (s *InvoiceService) ExtractBatch(ctx context.Context, docs []dto.DocumentInput) *dto.BatchResponse {
	resp := &dto.BatchResponse{
		RequestID: uuid.NewString(),
		Documents: make([]dto.BatchItem, len(docs)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxParallel)

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc dto.DocumentInput) {
			defer wg.Done()

			item := dto.BatchItem{Filename: doc.Filename}
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				item.Error = ctx.Err().Error()
				mu.Lock()
				resp.Documents[i] = item
				resp.Failed++
				mu.Unlock()
				return
			}

			start := time.Now()
			result, err := s.ProcessDocument(ctx, doc.Filename, doc.Data, dto.InvoiceRecord{})
			item.ElapsedMs = time.Since(start).Milliseconds()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[%s] Failed to process %s: %v", resp.RequestID, doc.Filename, err)
				item.Error = err.Error()
				resp.Failed++
			} else {
				record := result.Record
				item.Record = &record
				resp.Succeeded++
			}
			resp.Documents[i] = item
		}(i, doc)
	}

	wg.Wait()
	resp.ProcessedAt = time.Now().Format(time.RFC3339)
	return resp
}

// QualityReport describes how usable a text is for extraction.
func (s *InvoiceService) QualityReport(text string) dto.QualityReport {
	return BuildQualityReport(text)
}

func logTrace(requestID string, trace []dto.CandidateTrace) {
	for _, c := range trace {
		log.Printf("[%s] candidate field=%s source=%s value=%q verdict=%s", requestID, c.Field, c.Source, c.Value, c.Verdict)
	}
}

func writeTempFile(data []byte, ext string) (string, error) {
	tempFile, err := os.CreateTemp("", "invoice-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()

	if _, err := tempFile.Write(data); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return tempFile.Name(), nil
}

// saveImageToTempFile saves an image.Image to a temporary PNG file.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "invoice-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to encode image to PNG: %w", err)
	}

	return tempFile.Name(), nil
}
