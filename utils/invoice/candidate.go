package invoice

import "github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"

// ExtractFunc is a single candidate extractor. It reports false when its
// pattern finds nothing usable.
type ExtractFunc func(doc *ocrtext.Document, th *Thresholds) (string, bool)

// Strategy is an extractor tagged with the name reported in traces.
type Strategy struct {
	Source  string
	Extract ExtractFunc
}

// Candidate is a value proposed by one strategy for one field.
type Candidate struct {
	Field  string
	Value  string
	Source string
	// Score is strategy specific; for consumption it holds the implied
	// EUR/kWh price when an energy cost is known.
	Score float64
}

// collect runs strategies in order and keeps every value they produce.
func collect(field string, doc *ocrtext.Document, th *Thresholds, strategies []Strategy) []Candidate {
	var out []Candidate
	for _, s := range strategies {
		if v, ok := s.Extract(doc, th); ok && v != "" {
			out = append(out, Candidate{Field: field, Value: v, Source: s.Source})
		}
	}
	return out
}
