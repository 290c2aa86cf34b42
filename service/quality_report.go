package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/invoice"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
)

const (
	reportLookahead     = 4
	reportWindowRunes   = 180
	reportSampleRunes   = 500
	maxSuspiciousLines  = 20
	suspiciousLineRunes = 160
)

var reportKeywords = []string{
	"kwh", "consumo", "total factura", "término energía", "termino energia",
	"energía activa", "energia activa", "importe", "€", "eur", "periodo", "cups",
}

// Printable non-ASCII runes that are normal in Spanish invoices.
const expectedSymbols = "€ºª·—–-“”¡¿áéíóúüñÁÉÍÓÚÜÑ"

var (
	reportKwhRe   = regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(\d{1,3}(?:[.\s]\d{3})+|\d+(?:[.,]\d+)?)\s*kwh\b`)
	reportMoneyRe = regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(\d{1,3}(?:[.\s]\d{3})*(?:[.,]\d{1,2}))\s*(?:€|eur\b)`)
)

// BuildQualityReport measures how usable an OCR text is for extraction.
func BuildQualityReport(text string) dto.QualityReport {
	report := dto.QualityReport{
		Score:           TextQualityScore(text),
		CharCount:       utf8.RuneCountInString(text),
		KeywordCoverage: make(map[string]bool, len(reportKeywords)),
		KwhCandidates:   []dto.KwhWindow{},
		SuspiciousLines: []string{},
	}

	if report.CharCount > 0 {
		var nonASCII, digits int
		for _, r := range text {
			if r > 126 {
				nonASCII++
			}
			if unicode.IsDigit(r) {
				digits++
			}
		}
		report.NonASCIIRatio = float64(nonASCII) / float64(report.CharCount)
		report.DigitRatio = float64(digits) / float64(report.CharCount)
	}

	low := strings.ToLower(text)
	for _, k := range reportKeywords {
		report.KeywordCoverage[k] = strings.Contains(low, k)
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if isSuspiciousLine(line) {
			report.SuspiciousLines = append(report.SuspiciousLines, truncateRunes(line, suspiciousLineRunes))
			if len(report.SuspiciousLines) == maxSuspiciousLines {
				break
			}
		}
	}

	report.KwhCandidates = kwhWindows(lines)
	report.SampleHead = truncateRunes(text, reportSampleRunes)
	report.SampleTail = lastRunes(text, reportSampleRunes)
	return report
}

// isSuspiciousLine flags lines of ten or more runes where over 10% are
// unexpected non-ASCII symbols, the usual sign of OCR garbage.
func isSuspiciousLine(line string) bool {
	n := utf8.RuneCountInString(line)
	if strings.TrimSpace(line) == "" || n < 10 {
		return false
	}
	rare := 0
	for _, r := range line {
		if r > 126 && !strings.ContainsRune(expectedSymbols, r) {
			rare++
		}
	}
	return float64(rare)/float64(n) > 0.1
}

func kwhWindows(lines []string) []dto.KwhWindow {
	out := []dto.KwhWindow{}
	for i, line := range lines {
		folded := ocrtext.Fold(line)
		if !strings.Contains(folded, "kwh") && !(strings.Contains(folded, "total") && strings.Contains(folded, "consumo")) {
			continue
		}

		end := i + 1 + reportLookahead
		if end > len(lines) {
			end = len(lines)
		}
		var kept []string
		for _, l := range lines[i:end] {
			if !invoice.IsEquivalenceLine(l) {
				kept = append(kept, l)
			}
		}
		if len(kept) == 0 {
			continue
		}

		window := strings.Join(kept, " ")
		head := truncateRunes(window, reportWindowRunes)
		if m := reportKwhRe.FindStringSubmatch(window); m != nil {
			out = append(out, dto.KwhWindow{Window: head, Value: localeformat.KeepDecimals(m[1])})
		}
		if m := reportMoneyRe.FindStringSubmatch(window); m != nil {
			out = append(out, dto.KwhWindow{Window: head, Value: localeformat.KeepDecimals(m[1])})
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
