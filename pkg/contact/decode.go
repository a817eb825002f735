package contact

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const requestSchemaURL = "https://contacts.schemas.local/create-contact.request.schema.json"

// requestSchema requires both name fields as strings. Unknown properties are
// allowed and ignored by the typed decode.
const requestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["first_name", "last_name"],
  "properties": {
    "first_name": {"type": "string"},
    "last_name": {"type": "string"}
  }
}`

var compiledRequestSchema = mustCompileRequestSchema()

func mustCompileRequestSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(requestSchemaURL, strings.NewReader(requestSchema)); err != nil {
		panic(fmt.Sprintf("load request schema: %v", err))
	}
	return c.MustCompile(requestSchemaURL)
}

// Decode parses a raw invocation body into a Request.
//
// An empty body yields a DecodeError of kind DecodeMissing. Invalid JSON,
// a non-object document, a missing name field or a non-string name field
// yield DecodeMalformed. Decode has no side effects.
func Decode(body []byte) (Request, error) {
	if len(body) == 0 {
		return Request{}, &DecodeError{Kind: DecodeMissing}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return Request{}, &DecodeError{Kind: DecodeMalformed, Err: err}
	}
	if err := compiledRequestSchema.Validate(doc); err != nil {
		return Request{}, &DecodeError{Kind: DecodeMalformed, Err: err}
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, &DecodeError{Kind: DecodeMalformed, Err: err}
	}
	return req, nil
}
