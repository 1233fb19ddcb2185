// Package errors provides the error types reported while loading and
// validating requirement rules.
//
// Validation never stops at the first problem. Validators append to an
// ErrorList and return it through ToError, so callers see every violation in
// the tree, in stored order:
//
//	if err := validator.Validate(rule); err != nil {
//	    if list, ok := errors.AsList(err); ok {
//	        for _, e := range list.Errors {
//	            fmt.Println(e.Path, e.Field, e.Constraint)
//	        }
//	    }
//	}
//
// Errors are always recoverable: reject the tree and surface the field-level
// detail. An unsupported rule shape is not an error; see package legacy.
package errors
