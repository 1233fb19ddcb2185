package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes the type of error encountered while loading a rule.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // JSON/YAML syntax error
	ErrorTypeSchema     ErrorType = "schema"     // Wire-shape violation reported by the JSON schema
	ErrorTypeStructural ErrorType = "structural" // Arity or shape violation (empty children, forbidden field)
	ErrorTypeSemantic   ErrorType = "semantic"   // Bounds or grammar violation (n > len(children), bad course code)
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Error is a single validation error. It names where in the tree it was found,
// which field is wrong and which constraint the field broke.
type Error struct {
	Type       ErrorType // Category of error
	Path       string    // Node path, e.g. "$.children[1]"
	Field      string    // Offending field ("n", "min_count", "courses", "children")
	Constraint string    // Broken constraint, e.g. "n <= len(children)"
	Value      string    // Offending value when there is one (e.g. a malformed course code)
	Message    string    // Human-readable message
	Suggestion string    // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf(" at %s", e.Path))
	}
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" (field %q", e.Field))
		if e.Constraint != "" {
			sb.WriteString(fmt.Sprintf(", constraint %s", e.Constraint))
		}
		sb.WriteString(")")
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("; suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// ErrorList collects errors so a whole tree can be reported in one pass
// instead of failing on the first problem.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddAll appends every error from other, keeping their order.
func (el *ErrorList) AddAll(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}

// AddError creates and adds a new error.
func (el *ErrorList) AddError(errType ErrorType, path, field, constraint, message string) {
	el.Add(&Error{
		Type:       errType,
		Path:       path,
		Field:      field,
		Constraint: constraint,
		Message:    message,
	})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if el.Count() == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d error(s):", el.Count()))
	for _, err := range el.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the list contains at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// ByPath groups errors by node path. Errors keep their list order inside each group.
func (el *ErrorList) ByPath() map[string][]*Error {
	out := make(map[string][]*Error)
	for _, err := range el.Errors {
		out[err.Path] = append(out[err.Path], err)
	}
	return out
}

// AsList extracts an ErrorList from err. A single *Error is wrapped in a new list.
func AsList(err error) (*ErrorList, bool) {
	switch e := err.(type) {
	case *ErrorList:
		return e, true
	case *Error:
		return &ErrorList{Errors: []*Error{e}}, true
	default:
		return nil, false
	}
}
