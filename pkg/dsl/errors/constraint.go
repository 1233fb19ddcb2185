package errors

// Constraint names used in Error.Constraint. They are stable strings so callers
// and tests can match on them.
const (
	NonEmptyConstraint          = "len(children) >= 1"
	CoursesNonEmptyConstraint   = "len(courses) >= 1"
	SingleCourseConstraint      = "len(courses) == 1"
	CourseCodeConstraint        = `matches ^\d{2}:\d{3}:\d{3}$`
	NPositiveConstraint         = "n >= 1"
	NBoundConstraint            = "n <= len(children)"
	MinCountPositiveConstraint  = "min_count >= 1"
	MinCountBoundConstraint     = "min_count <= len(children)"
	NoCoursesShortcutConstraint = "courses shortcut forbidden"
	ChildObjectConstraint       = "child is a rule node"
)

// SuggestBound returns a suggestion for a count that exceeds the number of children.
func SuggestBound(field string, children int) string {
	if children == 0 {
		return "add children before setting " + field
	}
	return "lower " + field + " to at most the number of children"
}
