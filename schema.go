package reagent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// requestSchemaJSON is the JSON Schema for inbound run requests. Transports
// that accept raw JSON payloads validate against it before decoding, so a
// malformed request is rejected with a schema error instead of surfacing as
// a zero-valued run.
const requestSchemaJSON = `{
	"type": "object",
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"taskType": {"enum": ["knowledge", "decision", "reasoning", "general"]},
		"maxSteps": {"type": "integer", "minimum": 1},
		"availableTools": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	},
	"required": ["question", "taskType", "maxSteps"],
	"additionalProperties": false
}`

// requestSchema is compiled once at process start.
var requestSchema = mustCompileSchema(requestSchemaJSON)

// mustCompileSchema compiles a JSON Schema document, panicking on error.
// Only used for schemas defined at init time.
func mustCompileSchema(raw string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("reagent: invalid request schema: %v", err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("request.json", doc); err != nil {
		panic(fmt.Sprintf("reagent: failed to add schema resource: %v", err))
	}

	compiled, err := c.Compile("request.json")
	if err != nil {
		panic(fmt.Sprintf("reagent: failed to compile request schema: %v", err))
	}
	return compiled
}

// DecodeRequest validates a raw JSON run request against the request schema
// and decodes it. Registry-dependent checks (availableTools membership) are
// left to [RunRequest.Validate].
func DecodeRequest(raw []byte) (*RunRequest, error) {
	value, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if err := requestSchema.Validate(value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var req RunRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &req, nil
}
