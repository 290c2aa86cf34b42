package ocrtext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u1680", " ",
	"\u2000", " ",
	"\u2001", " ",
	"\u2002", " ",
	"\u2003", " ",
	"\u2004", " ",
	"\u2005", " ",
	"\u2006", " ",
	"\u2007", " ",
	"\u2008", " ",
	"\u2009", " ",
	"\u200a", " ",
	"\u202f", " ",
	"\u205f", " ",
	"\u3000", " ",
	"\t", " ",
	"\r\n", "\n",
	"\r", "\n",
)

// NormalizeSpaces replaces non-breaking, narrow and thin space variants with
// an ASCII space. Line breaks are kept.
func NormalizeSpaces(s string) string {
	return spaceReplacer.Replace(s)
}

// Flatten joins the whole text into one line with single spaces.
func Flatten(s string) string {
	return strings.Join(strings.Fields(NormalizeSpaces(s)), " ")
}

// StripDiacritics removes combining marks, so "energía" becomes "energia".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases s and strips diacritics for keyword matching.
func Fold(s string) string {
	return strings.ToLower(StripDiacritics(s))
}

// ContainsAny reports whether folded contains any of the keywords.
func ContainsAny(folded string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// Slice returns s[start:end] with both bounds clamped to the string and
// moved back onto rune boundaries.
func Slice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	for start > 0 && start < len(s) && !utf8.RuneStart(s[start]) {
		start--
	}
	for end > start && end < len(s) && !utf8.RuneStart(s[end]) {
		end--
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}
