package parser

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	dslErrors "github.com/div0rce/gradpath/pkg/dsl/errors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	v2SchemaFile     = "schemas/rule_v2.schema.json"
	legacySchemaFile = "schemas/legacy_rule.schema.json"

	schemaBaseURL = "https://gradpath.dev/"
)

var (
	schemasOnce  sync.Once
	v2Schema     *jsonschema.Schema
	legacySchema *jsonschema.Schema
	schemasErr   error
)

// loadSchemas compiles the embedded wire schemas once per process.
func loadSchemas() error {
	schemasOnce.Do(func() {
		v2Schema, schemasErr = compileSchema(v2SchemaFile)
		if schemasErr != nil {
			return
		}
		legacySchema, schemasErr = compileSchema(legacySchemaFile)
	})
	return schemasErr
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	url := schemaBaseURL + name
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateV2Schema checks a decoded rule against the v2 wire schema.
func ValidateV2Schema(raw any) error {
	if err := loadSchemas(); err != nil {
		return err
	}
	return schemaErrors(v2Schema.Validate(raw))
}

// ValidateLegacySchema checks a decoded rule against the legacy wire schema.
func ValidateLegacySchema(raw any) error {
	if err := loadSchemas(); err != nil {
		return err
	}
	return schemaErrors(legacySchema.Validate(raw))
}

// schemaErrors converts a jsonschema validation failure into an ErrorList of
// schema errors, one per leaf cause, sorted by path.
func schemaErrors(err error) error {
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	errs := dslErrors.NewErrorList()
	seen := make(map[string]bool)
	for _, leaf := range leafCauses(ve) {
		path := pointerToPath(leaf.InstanceLocation)
		key := path + "\x00" + leaf.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		errs.Add(&dslErrors.Error{
			Type:       dslErrors.ErrorTypeSchema,
			Path:       path,
			Field:      lastField(leaf.InstanceLocation),
			Constraint: leaf.KeywordLocation,
			Message:    leaf.Message,
		})
	}

	sort.SliceStable(errs.Errors, func(i, j int) bool {
		return errs.Errors[i].Path < errs.Errors[j].Path
	})
	return errs.ToError()
}

func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leafCauses(cause)...)
	}
	return out
}

// pointerToPath renders a JSON pointer such as "/children/1/n" in the
// "$.children[1].n" form used by the validator.
func pointerToPath(pointer string) string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if seg == "" {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			sb.WriteString("[" + seg + "]")
			continue
		}
		sb.WriteString("." + seg)
	}
	return sb.String()
}

func lastField(pointer string) string {
	segs := strings.Split(pointer, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] == "" {
			continue
		}
		if _, err := strconv.Atoi(segs[i]); err != nil {
			return segs[i]
		}
	}
	return ""
}
