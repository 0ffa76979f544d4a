package taskdoc

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed document.schema.json
var documentSchemaJSON []byte

const documentSchemaURL = "document.schema.json"

var (
	documentSchemaOnce sync.Once
	documentSchema     *jsonschema.Schema
	documentSchemaErr  error
)

// compiledDocumentSchema compiles the embedded schema once.
func compiledDocumentSchema() (*jsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(documentSchemaURL, bytes.NewReader(documentSchemaJSON)); err != nil {
			documentSchemaErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		documentSchema, documentSchemaErr = compiler.Compile(documentSchemaURL)
	})
	return documentSchema, documentSchemaErr
}

// validateDocumentSchema checks decoded JSON against the document schema.
// Every field is optional; only types and the priority enum are enforced.
func validateDocumentSchema(raw any) error {
	schema, err := compiledDocumentSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(raw); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("document does not match schema: %s", verr.Error())
		}
		return fmt.Errorf("validate document: %w", err)
	}
	return nil
}
