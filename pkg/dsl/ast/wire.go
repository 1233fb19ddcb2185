package ast

// Wire field names shared by the mapper, the schema and the projection.
const (
	FieldType     = "type"
	FieldCourses  = "courses"
	FieldChildren = "children"
	FieldN        = "n"
	FieldMinCount = "min_count"
)

// Wire returns the canonical v2 JSON-like projection of the tree.
//
// Unsupported nodes project to their original source shape, so a tree that
// went through the mapper round-trips without losing the audit trail. A
// COUNT_MIN node keeps a forbidden courses shortcut in the projection so a
// later validation still sees it.
func (n *Node) Wire() any {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindCourseSet:
		return map[string]any{
			FieldType:    string(KindCourseSet),
			FieldCourses: stringsToAny(n.Courses),
		}
	case KindAllOf:
		return map[string]any{
			FieldType:     string(KindAllOf),
			FieldChildren: wireChildren(n.Children),
		}
	case KindNOf:
		return map[string]any{
			FieldType:     string(KindNOf),
			FieldN:        n.N,
			FieldChildren: wireChildren(n.Children),
		}
	case KindCountMin:
		out := map[string]any{
			FieldType:     string(KindCountMin),
			FieldMinCount: n.MinCount,
			FieldChildren: wireChildren(n.Children),
		}
		if n.Courses != nil {
			out[FieldCourses] = stringsToAny(n.Courses)
		}
		return out
	default:
		return n.Source
	}
}

func wireChildren(children []*Node) []any {
	out := make([]any, 0, len(children))
	for _, child := range children {
		out = append(out, child.Wire())
	}
	return out
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
