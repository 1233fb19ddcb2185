package parser

import (
	"fmt"
	"os"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
	dslErrors "github.com/div0rce/gradpath/pkg/dsl/errors"
	"github.com/div0rce/gradpath/pkg/dsl/legacy"
	"github.com/div0rce/gradpath/pkg/dsl/validator"
)

// Rule is a parsed requirement rule.
type Rule struct {
	Raw     any       // Decoded wire value
	Version int       // 2 for v2 documents, 1 for legacy shorthand
	Node    *ast.Node // Canonical tree
	Source  string    // File path or caller-supplied label
}

// Parser decodes, checks and maps requirement rules.
type Parser struct {
	maxSize          int64 // Maximum document size in bytes (default: 1MB)
	schemaCheck      bool  // Validate against the wire schema before mapping
	allowUnsupported bool  // Accept unmappable shapes as UNSUPPORTED nodes
	quarantine       bool  // Replace invalid nodes instead of failing
}

// NewParser creates a parser with default configuration: no schema check,
// unsupported shapes allowed, invalid nodes rejected.
func NewParser() *Parser {
	return &Parser{
		maxSize:          1024 * 1024, // 1MB
		allowUnsupported: true,
	}
}

// WithMaxSize sets the maximum document size.
func (p *Parser) WithMaxSize(size int64) *Parser {
	p.maxSize = size
	return p
}

// WithSchemaValidation enables the JSON-Schema wire check.
func (p *Parser) WithSchemaValidation(enabled bool) *Parser {
	p.schemaCheck = enabled
	return p
}

// WithAllowUnsupported controls whether unmappable shapes are accepted.
// When false they are reported as structural errors.
func (p *Parser) WithAllowUnsupported(allow bool) *Parser {
	p.allowUnsupported = allow
	return p
}

// WithQuarantine makes the parser replace invalid nodes with UNSUPPORTED
// markers instead of returning validation errors. Syntax and I/O errors are
// still returned.
func (p *Parser) WithQuarantine(enabled bool) *Parser {
	p.quarantine = enabled
	return p
}

// ParseFile reads and parses the rule document at path. The format is
// taken from the file extension.
func (p *Parser) ParseFile(path string) (*Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &dslErrors.Error{
			Type:    dslErrors.ErrorTypeIO,
			Message: fmt.Sprintf("failed to access file: %v", err),
			Path:    path,
		}
	}
	if info.Size() > p.maxSize {
		return nil, &dslErrors.Error{
			Type:    dslErrors.ErrorTypeIO,
			Message: fmt.Sprintf("file size %d exceeds maximum %d bytes", info.Size(), p.maxSize),
			Path:    path,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dslErrors.Error{
			Type:    dslErrors.ErrorTypeIO,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Path:    path,
		}
	}

	return p.ParseBytes(data, FormatFromPath(path), path)
}

// ParseBytes parses a rule document from memory.
func (p *Parser) ParseBytes(data []byte, format Format, source string) (*Rule, error) {
	if int64(len(data)) > p.maxSize {
		return nil, &dslErrors.Error{
			Type:    dslErrors.ErrorTypeIO,
			Message: fmt.Sprintf("data size %d exceeds maximum %d bytes", len(data), p.maxSize),
			Path:    source,
		}
	}

	raw, err := Decode(data, format)
	if err != nil {
		return nil, &dslErrors.Error{
			Type:       dslErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("decoding failed: %v", err),
			Path:       source,
			Suggestion: "check JSON/YAML syntax (brackets, indentation, quotes)",
		}
	}

	return p.ParseValue(raw, source)
}

// ParseValue checks and maps an already-decoded rule. Values that did not
// come from Decode should go through Normalize first.
func (p *Parser) ParseValue(raw any, source string) (*Rule, error) {
	rule := &Rule{
		Raw:     raw,
		Version: legacy.SchemaVersion(raw),
		Source:  source,
	}

	if p.schemaCheck {
		if err := p.checkSchema(rule); err != nil {
			return nil, err
		}
	}

	node := legacy.Map(raw)

	var opts []validator.Option
	if !p.allowUnsupported {
		opts = append(opts, validator.WithRejectUnsupported())
	}
	v := validator.New(opts...)

	if p.quarantine {
		rule.Node, _ = v.Quarantine(node)
		return rule, nil
	}

	if err := v.Validate(node); err != nil {
		return nil, err
	}
	rule.Node = node
	return rule, nil
}

// checkSchema validates the raw value against the schema of its version. A
// legacy rule that cannot be mapped must still be well-formed legacy.
func (p *Parser) checkSchema(rule *Rule) error {
	if rule.Version == 2 {
		return ValidateV2Schema(rule.Raw)
	}
	return ValidateLegacySchema(rule.Raw)
}
