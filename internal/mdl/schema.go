package mdl

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// manifestSchema constrains the wire shape of an MDL manifest before it
// is decoded into typed structs.
const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["catalog", "schema", "models"],
  "properties": {
    "catalog": {"type": "string", "minLength": 1},
    "schema": {"type": "string", "minLength": 1},
    "models": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "columns"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "refSql": {"type": "string"},
          "columns": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "type"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "type": {"type": "string", "minLength": 1},
                "properties": {"type": "object", "additionalProperties": {"type": "string"}}
              }
            }
          },
          "properties": {"type": "object", "additionalProperties": {"type": "string"}}
        }
      }
    }
  }
}`

var compileSchema = sync.OnceValue(func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("mdl.schema.json", strings.NewReader(manifestSchema)); err != nil {
		panic(fmt.Sprintf("add mdl schema resource: %v", err))
	}
	return compiler.MustCompile("mdl.schema.json")
})

func validateManifest(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := compileSchema().Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}
