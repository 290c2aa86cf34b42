// Command evaluate runs the extraction pipeline over a PDF or a folder of
// PDFs and compares the results with the expected.json found next to them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Aashish23092/electricity-invoice-ocr/client"
	"github.com/Aashish23092/electricity-invoice-ocr/config"
	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/service"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/invoice"
)

func main() {
	expectedPath := flag.String("expected", "", "expected results JSON (default: expected.json next to the input)")
	xlsxPath := flag.String("xlsx", "", "write an XLSX report to this path")
	firstPass := flag.String("first-pass", "", "first-pass guess applied to every document (JSON or key: value; ...)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: evaluate [flags] <invoice.pdf | folder>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fp, err := service.ParseFirstPassInput(*firstPass)
	if err != nil {
		log.Fatalf("Invalid first pass: %v", err)
	}

	files, err := listPDFs(input)
	if err != nil {
		log.Fatalf("Failed to list documents: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No PDF files found in %s", input)
	}

	if *expectedPath == "" {
		*expectedPath = filepath.Join(baseDir(input), "expected.json")
	}
	expected, err := loadExpected(*expectedPath)
	if err != nil {
		log.Printf("[WARN] Could not read %s: %v", *expectedPath, err)
	}

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.TesseractLanguage)
	defer tesseractClient.Close()
	recognizers := []service.Recognizer{tesseractClient}
	if paddleClient := client.NewPaddleClient(cfg.PaddleOCRURL); paddleClient.Enabled() {
		recognizers = append(recognizers, paddleClient)
	}
	svc := service.NewInvoiceService(invoice.NewEngine(&cfg.Thresholds), service.NewPDFProcessor(), recognizers, 1, cfg.DebugExtraction)

	ctx := context.Background()
	start := time.Now()
	var rows []service.EvaluationRow
	var evaluated, allCorrect int
	var accuracySum float64

	for i, path := range files {
		name := filepath.Base(path)
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(files), name)

		row := service.EvaluationRow{Filename: name}
		docStart := time.Now()
		resp, err := processFile(ctx, svc, path, fp)
		row.Elapsed = time.Since(docStart)
		if err != nil {
			row.Err = err
			fmt.Printf("ERROR: %v\n", err)
			rows = append(rows, row)
			continue
		}
		row.TextSource = resp.TextSource
		row.Record = resp.Record

		out, _ := json.MarshalIndent(resp.Record, "", "  ")
		fmt.Println(string(out))

		if want, ok := lookupExpected(expected, name); ok {
			result := service.Evaluate(resp.Record, want)
			row.Result = &result
			printEvaluation(name, result)
			evaluated++
			accuracySum += result.Accuracy
			if result.AllCorrect() {
				allCorrect++
			}
		}
		fmt.Printf("Time: %s\n", formatDuration(row.Elapsed))
		rows = append(rows, row)
	}

	total := time.Since(start)
	fmt.Printf("\n== SUMMARY ==\n")
	fmt.Printf("Documents: %d, evaluated: %d, fully correct: %d\n", len(files), evaluated, allCorrect)
	if evaluated > 0 {
		fmt.Printf("Mean field accuracy: %.2f%%\n", accuracySum/float64(evaluated)*100)
	}
	fmt.Printf("Total time: %s (mean %s per document)\n", formatDuration(total), formatDuration(total/time.Duration(len(files))))

	if *xlsxPath != "" {
		data, err := service.EvaluationXLSX(rows)
		if err != nil {
			log.Fatalf("Failed to build XLSX report: %v", err)
		}
		if err := os.WriteFile(*xlsxPath, data, 0o644); err != nil {
			log.Fatalf("Failed to write XLSX report: %v", err)
		}
		fmt.Printf("Report written to %s\n", *xlsxPath)
	}
}

func processFile(ctx context.Context, svc *service.InvoiceService, path string, fp dto.InvoiceRecord) (*dto.ExtractionResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return svc.ProcessDocument(ctx, filepath.Base(path), data, fp)
}

// listPDFs returns input itself when it is a file, or the PDFs directly
// inside it when it is a folder, sorted by name.
func listPDFs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, filepath.Join(input, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func baseDir(input string) string {
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return input
	}
	return filepath.Dir(input)
}

// loadExpected reads a JSON object mapping file names to expected records.
// Field names may use any alias dto.RecordFromMap accepts.
func loadExpected(path string) (map[string]dto.InvoiceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]dto.InvoiceRecord, len(raw))
	for name, fields := range raw {
		m := make(map[string]string, len(fields))
		for k, v := range fields {
			switch val := v.(type) {
			case string:
				m[k] = val
			case float64:
				m[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		}
		out[strings.ToLower(name)] = dto.RecordFromMap(m)
	}
	return out, nil
}

func lookupExpected(expected map[string]dto.InvoiceRecord, name string) (dto.InvoiceRecord, bool) {
	rec, ok := expected[strings.ToLower(name)]
	return rec, ok
}

func printEvaluation(title string, result dto.EvaluationResult) {
	fmt.Printf("== EVALUATION [%s] ==\n", title)
	for _, v := range result.Fields {
		mark := "OK  "
		if !v.OK {
			mark = "FAIL"
		}
		fmt.Printf("%s %s: predicted=%q expected=%q\n", mark, v.Field, v.Predicted, v.Expected)
	}
	if result.AllCorrect() {
		fmt.Println("Invoice fully correct")
	} else {
		fmt.Printf("Invoice with errors (%d/%d)\n", result.Correct, result.Total)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	secs := int(d.Seconds())
	h, m, s := secs/3600, secs%3600/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%d h %d min %d s", h, m, s)
	case m > 0:
		return fmt.Sprintf("%d min %d s", m, s)
	}
	return fmt.Sprintf("%d s", s)
}
