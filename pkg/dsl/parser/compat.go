package parser

import (
	"github.com/div0rce/gradpath/pkg/dsl/legacy"
	"github.com/div0rce/gradpath/pkg/dsl/validator"
)

// CheckCompat is the ingest-time check for stored rules.
//
// A v2 rule is checked as stored: the raw value must pass the v2 wire
// schema, so stray keys such as a legacy "any" next to "type" are rejected,
// and its mapped tree must pass the validator. A legacy rule that maps to a
// fully supported tree must have a valid v2 projection. A legacy rule that
// cannot be mapped is accepted as long as it is well-formed legacy; it is
// evaluated as unsupported later.
func CheckCompat(raw any) error {
	if legacy.SchemaVersion(raw) == 2 {
		if err := ValidateV2Schema(raw); err != nil {
			return err
		}
		return validator.Validate(legacy.Map(raw))
	}

	node := legacy.Map(raw)
	if node.HasUnsupported() {
		return ValidateLegacySchema(raw)
	}

	wire, err := Normalize(node.Wire())
	if err != nil {
		return err
	}
	if err := ValidateV2Schema(wire); err != nil {
		return err
	}
	return validator.Validate(node)
}
