package server

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/request.json
var requestSchemaJSON []byte

var errSchemaViolation = errors.New("request does not match schema")

// requestValidator checks request bodies against the embedded schema. The
// compiled schema is immutable and shared across requests.
type requestValidator struct {
	schema *gojsonschema.Schema
}

func newRequestValidator() (*requestValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(requestSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}

	return &requestValidator{schema: schema}, nil
}

// Validate returns nil when body is a JSON document matching the schema.
func (v *requestValidator) Validate(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		msgs = append(msgs, re.String())
	}

	return fmt.Errorf("%w: %s", errSchemaViolation, strings.Join(msgs, "; "))
}
