package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// firstPassSchema accepts any flat object whose values are short strings,
// numbers or null. Alias keys are resolved later by dto.RecordFromMap.
const firstPassSchema = `{
	"type": "object",
	"additionalProperties": {
		"anyOf": [
			{"type": "string", "maxLength": 128},
			{"type": "number"},
			{"type": "null"}
		]
	}
}`

var compiledFirstPassSchema = mustCompileFirstPassSchema()

func mustCompileFirstPassSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("first_pass.json", strings.NewReader(firstPassSchema)); err != nil {
		panic(fmt.Sprintf("add first pass schema: %v", err))
	}
	return compiler.MustCompile("first_pass.json")
}

// ParseFirstPassInput reads the optional first-pass guess sent with a
// request. JSON input must match firstPassSchema; anything else is read as
// "key: value; ..." text.
func ParseFirstPassInput(raw string) (dto.InvoiceRecord, error) {
	if strings.TrimSpace(raw) == "" {
		return dto.InvoiceRecord{}, nil
	}

	if block, ok := dto.FirstPassJSON(raw); ok {
		var v any
		if err := json.Unmarshal([]byte(block), &v); err != nil {
			return dto.InvoiceRecord{}, fmt.Errorf("%w: %v", dto.ErrInvalidFirstPass, err)
		}
		if err := compiledFirstPassSchema.Validate(v); err != nil {
			return dto.InvoiceRecord{}, fmt.Errorf("%w: %v", dto.ErrInvalidFirstPass, err)
		}
	}
	return dto.ParseFirstPass(raw), nil
}
