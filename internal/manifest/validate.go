package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
)

//go:embed schema/publication.schema.json
var schemaBytes []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	})
	return schema, schemaErr
}

// Validate checks the manifest against the embedded publication-manifest
// schema. On failure the returned error carries a short diagnostic message
// plus the validator's per-field detail blob.
func (m *PublicationManifest) Validate() error {
	sch, err := compiledSchema()
	if err != nil {
		return berrors.Wrap(err, berrors.CategoryInternal, berrors.SeverityFatal, "publication manifest schema does not compile")
	}

	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize manifest for validation: %w", err)
	}
	result, err := sch.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to run manifest validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var detail strings.Builder
	for _, violation := range result.Errors() {
		fmt.Fprintf(&detail, "%s: %s\n", violation.Field(), violation.Description())
	}
	return berrors.NewValidationError("publication manifest failed schema validation").
		WithDetail(detail.String())
}

// Write validates the manifest and serializes it to path with stable key
// order and human-readable indentation. Nothing is persisted when
// validation fails.
func (m *PublicationManifest) Write(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- manifest is public output
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}
