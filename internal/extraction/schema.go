package extraction

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// quoteSchema type-checks the collaborator's output before coercion. Every
// field is optional and absent fields fall back to documented defaults, but
// a present field with the wrong type is a parse failure, not something to
// silently zero out.
const quoteSchema = `{
	"type": "object",
	"properties": {
		"customer_name": {"type": "string"},
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"description": {"type": "string"},
					"quantity":    {"type": "number", "minimum": 0},
					"unit_price":  {"type": "number", "minimum": 0},
					"total":       {"type": "number"}
				}
			}
		},
		"total_amount":       {"type": "number"},
		"notes":              {"type": "string"},
		"upsell_opportunity": {"type": "boolean"}
	}
}`

var compiledQuoteSchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(quoteSchema))
	if err != nil {
		panic(fmt.Sprintf("quote schema does not compile: %v", err))
	}
	return schema
}()

// validateQuoteJSON returns a descriptive error when the document is not
// valid JSON or violates the quote schema.
func validateQuoteJSON(document string) error {
	result, err := compiledQuoteSchema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("response violates quote schema: %s", strings.Join(msgs, "; "))
	}

	return nil
}
