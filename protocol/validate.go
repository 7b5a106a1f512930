package protocol

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateByJSONSchema validates a document against a JSON schema.
// Every violation is reported, joined into a single error.
func ValidateByJSONSchema(schema string, document any) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate by JSON schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]error, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, errors.New(re.String()))
	}
	return &ValidationError{Err: errors.Join(errs...)}
}

// ValidationError is returned when tool arguments do not match the tool's input schema.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid tool arguments: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }
