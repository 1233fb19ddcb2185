// Package parser decodes requirement rules from JSON or YAML and turns them
// into validated ast trees.
//
// The pipeline is:
//
//  1. Decode: JSON or YAML (gopkg.in/yaml.v3), normalized to JSON value types.
//  2. Schema (optional): the v2 or legacy JSON Schema, chosen by the
//     document's schema version.
//  3. Map: legacy.Map to a canonical tree.
//  4. Validate: validator.Validate, or Quarantine in permissive mode.
//
// Basic usage:
//
//	p := parser.NewParser().WithSchemaValidation(true)
//	rule, err := p.ParseFile("core.yaml")
//	if err != nil {
//	    // err is an *errors.Error (I/O, syntax) or *errors.ErrorList
//	}
//
// CheckCompat is the ingest-time check for stored rules that may still use
// legacy shorthand.
package parser
