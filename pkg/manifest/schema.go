package manifest

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaSource []byte

var nameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("manifest.schema.json", strings.NewReader(string(schemaSource))); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("manifest.schema.json")
	})
	return schema, schemaErr
}

// validateSchema checks raw manifest JSON against the embedded schema.
func validateSchema(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "manifest schema is broken")
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "manifest is not valid JSON")
	}
	if err := s.Validate(doc); err != nil {
		return errors.Wrap(err, errors.ErrManifestInvalid, "manifest does not match schema")
	}
	return nil
}
