package legacy

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
)

// Legacy (pre-v2) shorthand keys.
const (
	KeyCourse       = "course"
	KeyAny          = "any"
	KeyAll          = "all"
	KeyCountAtLeast = "countAtLeast"
)

// Map translates a raw JSON-like rule into a canonical node tree.
//
// v2 objects (a string "type" field) are decoded field by field. Legacy
// shorthand is mapped node-locally and recursively:
//
//	{"course": "X"}  -> COURSE_SET [X]
//	{"any": [...]}   -> N_OF n=1
//	{"all": [...]}   -> ALL_OF
//	"X" (bare string) -> COURSE_SET [X]
//
// Every other shape, including legacy countAtLeast, becomes an UNSUPPORTED
// node that keeps the original value. Map never fails and never guesses; bad
// parameters inside a recognized shape are left for the validator to report.
func Map(raw any) *ast.Node {
	switch v := raw.(type) {
	case string:
		return ast.CourseSet(v)
	case map[string]any:
		return mapObject(v)
	case nil:
		return ast.Unsupported(nil, "rule node is null")
	default:
		return ast.Unsupported(raw, fmt.Sprintf("rule node of type %s is not an object", describe(raw)))
	}
}

// SchemaVersion infers the schema version of a raw rule: 2 when the top-level
// object carries a string "type", 1 otherwise.
func SchemaVersion(raw any) int {
	obj, ok := raw.(map[string]any)
	if !ok {
		return 1
	}
	if _, ok := obj[ast.FieldType].(string); ok {
		return 2
	}
	return 1
}

func mapObject(obj map[string]any) *ast.Node {
	if t, ok := obj[ast.FieldType]; ok {
		kind, ok := t.(string)
		if !ok {
			return ast.Unsupported(obj, "type must be a string")
		}
		return mapV2(obj, ast.Kind(kind))
	}

	if len(obj) != 1 {
		return ast.Unsupported(obj, fmt.Sprintf("unrecognized rule shape with keys [%s]", strings.Join(sortedKeys(obj), ", ")))
	}

	for key, value := range obj {
		switch key {
		case KeyCourse:
			code, ok := value.(string)
			if !ok {
				return ast.Unsupported(obj, "legacy course must be a string")
			}
			return ast.CourseSet(code)

		case KeyAny:
			children, ok := legacyChildren(value)
			if !ok {
				return ast.Unsupported(obj, "legacy any must be a non-empty list")
			}
			return &ast.Node{Kind: ast.KindNOf, N: 1, Children: children}

		case KeyAll:
			children, ok := legacyChildren(value)
			if !ok {
				return ast.Unsupported(obj, "legacy all must be a non-empty list")
			}
			return &ast.Node{Kind: ast.KindAllOf, Children: children}

		case KeyCountAtLeast:
			return ast.Unsupported(obj, "legacy countAtLeast has no v2 mapping")
		}
	}

	return ast.Unsupported(obj, "unrecognized rule shape")
}

func mapV2(obj map[string]any, kind ast.Kind) *ast.Node {
	switch kind {
	case ast.KindCourseSet:
		courses, _ := toStrings(obj[ast.FieldCourses])
		return &ast.Node{Kind: ast.KindCourseSet, Courses: courses}

	case ast.KindAllOf:
		return &ast.Node{Kind: ast.KindAllOf, Children: mapChildren(obj[ast.FieldChildren])}

	case ast.KindNOf:
		return &ast.Node{
			Kind:     ast.KindNOf,
			N:        toInt(obj[ast.FieldN]),
			Children: mapChildren(obj[ast.FieldChildren]),
		}

	case ast.KindCountMin:
		node := &ast.Node{
			Kind:     ast.KindCountMin,
			MinCount: toInt(obj[ast.FieldMinCount]),
			Children: mapChildren(obj[ast.FieldChildren]),
		}
		if raw, present := obj[ast.FieldCourses]; present {
			courses, _ := toStrings(raw)
			if courses == nil {
				courses = []string{}
			}
			node.Courses = courses
		}
		return node

	default:
		return ast.Unsupported(obj, fmt.Sprintf("unknown node type %q", string(kind)))
	}
}

// legacyChildren maps a legacy any/all payload. It requires a non-empty list.
func legacyChildren(value any) ([]*ast.Node, bool) {
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}
	return mapChildren(items), true
}

// mapChildren maps each element of a list. A non-list yields nil so the
// validator reports the missing children.
func mapChildren(value any) []*ast.Node {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	children := make([]*ast.Node, 0, len(items))
	for _, item := range items {
		children = append(children, Map(item))
	}
	return children
}

// toInt converts the numeric representations produced by JSON and YAML
// decoders. Anything that is not an integral number yields 0, which the
// validator rejects as "must be an integer >= 1".
func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v)
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}

// toStrings converts a list of course codes. Non-string entries are kept in
// printed form so the validator can name them.
func toStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func describe(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
