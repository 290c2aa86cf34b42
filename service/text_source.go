package service

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Text sources reported in extraction responses.
const (
	SourceEmbedded = "embedded"
	SourceOCR      = "ocr"
	SourceText     = "text"
)

const (
	rasterScoreThreshold = 4.0
	minUsableTextLen     = 50
)

var qualityKeywords = []string{"kwh", "consumo", "importe", "total", "periodo", "cups"}

// TextCandidate is one full-document text produced by a text source.
type TextCandidate struct {
	Source     string
	Engine     string
	Text       string
	Score      float64
	Confidence float64
}

// TextQualityScore gives one point per invoice keyword present plus up to two
// points for volume (one per 4000 characters).
func TextQualityScore(text string) float64 {
	if text == "" {
		return 0
	}
	low := strings.ToLower(text)
	score := 0.0
	for _, k := range qualityKeywords {
		if strings.Contains(low, k) {
			score++
		}
	}
	volume := float64(utf8.RuneCountInString(text)) / 4000.0
	if volume > 2 {
		volume = 2
	}
	return score + volume
}

// looksLikeConceptTable matches issuers that lay the bill out as a
// concept/quantity/unit-price table.
func looksLikeConceptTable(low string) bool {
	return (strings.Contains(low, "concepto") && strings.Contains(low, "cantidad") && strings.Contains(low, "precio unitario")) ||
		strings.Contains(low, "naturgy")
}

// NeedsRaster reports whether the embedded text is poor enough that the page
// images should be OCRed as well. Concept tables that spell out "EUR" without
// a euro sign usually lose their amounts in the text layer.
func NeedsRaster(embedded string) bool {
	if strings.TrimSpace(embedded) == "" {
		return true
	}
	if TextQualityScore(embedded) < rasterScoreThreshold {
		return true
	}
	low := strings.ToLower(embedded)
	hasEurWord := strings.Contains(low, " eur") || strings.Contains(low, "eur ")
	return looksLikeConceptTable(low) && hasEurWord && !strings.Contains(embedded, "€")
}

// ChooseText picks the candidate with the best score, longer text first on
// ties. A winner shorter than 50 characters gives way to a usable embedded text.
func ChooseText(cands []TextCandidate) (TextCandidate, bool) {
	if len(cands) == 0 {
		return TextCandidate{}, false
	}
	sorted := make([]TextCandidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return len(sorted[i].Text) > len(sorted[j].Text)
	})

	best := sorted[0]
	if utf8.RuneCountInString(best.Text) < minUsableTextLen {
		for _, c := range sorted {
			if c.Source == SourceEmbedded && utf8.RuneCountInString(c.Text) >= minUsableTextLen {
				return c, true
			}
		}
	}
	return best, true
}

// CleanText trims every line, drops blank ones and replaces tabs and
// non-breaking spaces with plain spaces.
func CleanText(text string) string {
	text = strings.NewReplacer("\u00a0", " ", "\t", " ", "\r", "").Replace(text)
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
