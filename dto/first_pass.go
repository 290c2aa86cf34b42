package dto

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	jsonBlockRe     = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseFirstPass reads a first-pass guess. It accepts a JSON object, possibly
// wrapped in surrounding prose, or "key: value; key: value" text. Unknown
// keys are dropped and malformed input gives an empty record.
func ParseFirstPass(raw string) InvoiceRecord {
	if block, ok := FirstPassJSON(raw); ok {
		var obj map[string]any
		if err := json.Unmarshal([]byte(block), &obj); err == nil {
			m := make(map[string]string, len(obj))
			for k, v := range obj {
				switch val := v.(type) {
				case string:
					m[k] = val
				case float64:
					m[k] = strconv.FormatFloat(val, 'f', -1, 64)
				}
			}
			return cleanFirstPass(RecordFromMap(m))
		}
	}

	m := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return cleanFirstPass(RecordFromMap(m))
}

// FirstPassJSON returns the outermost {...} block of raw with trailing commas
// removed, or false when raw holds no braces.
func FirstPassJSON(raw string) (string, bool) {
	block := jsonBlockRe.FindString(raw)
	if block == "" {
		return "", false
	}
	return trailingCommaRe.ReplaceAllString(block, "$1"), true
}

func cleanFirstPass(r InvoiceRecord) InvoiceRecord {
	r.SupplyPointCode = strings.ToUpper(strings.ReplaceAll(r.SupplyPointCode, " ", ""))
	r.PeriodStart = strings.ReplaceAll(r.PeriodStart, ".", "/")
	r.PeriodEnd = strings.ReplaceAll(r.PeriodEnd, ".", "/")
	return r
}
