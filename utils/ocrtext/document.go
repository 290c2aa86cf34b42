package ocrtext

import "strings"

// Document is the normalized text of one invoice. It is built once by
// NewDocument and only read afterwards.
type Document struct {
	// Text is the input with exotic spaces replaced.
	Text string
	// Lines are the lines of Text, blank ones included.
	Lines []string
	// Folded holds Fold(line) for every entry of Lines.
	Folded []string
	// FoldedText is Fold(Text).
	FoldedText string
	// Flat is Text flattened into a single line.
	Flat string
	// FoldedFlat is Fold(Flat).
	FoldedFlat string
}

// NewDocument normalizes raw OCR output.
func NewDocument(raw string) *Document {
	text := NormalizeSpaces(raw)
	lines := strings.Split(text, "\n")
	folded := make([]string, len(lines))
	for i, ln := range lines {
		folded[i] = Fold(ln)
	}
	flat := Flatten(text)
	return &Document{
		Text:       text,
		Lines:      lines,
		Folded:     folded,
		FoldedText: strings.Join(folded, "\n"),
		Flat:       flat,
		FoldedFlat: Fold(flat),
	}
}

// Empty reports whether the document holds no visible characters.
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Window joins lines[i-back : i+fwd+1] with single spaces.
func (d *Document) Window(i, back, fwd int) string {
	return joinRange(d.Lines, i-back, i+fwd+1)
}

// FoldedWindow is Window over the folded lines.
func (d *Document) FoldedWindow(i, back, fwd int) string {
	return joinRange(d.Folded, i-back, i+fwd+1)
}

// NonBlank returns a document made of the non-blank lines only.
func (d *Document) NonBlank() *Document {
	kept := make([]string, 0, len(d.Lines))
	for _, ln := range d.Lines {
		if strings.TrimSpace(ln) != "" {
			kept = append(kept, ln)
		}
	}
	return NewDocument(strings.Join(kept, "\n"))
}

// IsCredit reports whether the invoice is a credit note or a rectification.
func (d *Document) IsCredit() bool {
	return ContainsAny(d.FoldedText, "rectifica", "abono")
}

func joinRange(lines []string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return ""
	}
	return strings.Join(lines[from:to], " ")
}
