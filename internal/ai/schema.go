package ai

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
	"github.com/xelth-com/receiptdesk/internal/models"
)

var (
	schemaOnce sync.Once
	schemaText string
)

// ExtractionSchema is the JSON schema of models.ExtractedData as sent to the model
func ExtractionSchema() string {
	schemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: true,
			DoNotReference:            true,
			ExpandedStruct:            true,
			Anonymous:                 true,
			Mapper: func(t reflect.Type) *jsonschema.Schema {
				if t == reflect.TypeOf(decimal.Decimal{}) {
					return &jsonschema.Schema{Type: "number"}
				}
				return nil
			},
		}
		schema := reflector.Reflect(&models.ExtractedData{})
		schema.Version = ""
		schema.Properties.Delete("raw_ai_response")

		b, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			panic(err)
		}
		schemaText = string(b)
	})
	return schemaText
}
