package ast

// Kind tags the variant of a requirement node.
type Kind string

const (
	KindCourseSet   Kind = "COURSE_SET"  // single-course leaf
	KindAllOf       Kind = "ALL_OF"      // AND of children
	KindNOf         Kind = "N_OF"        // at least N children
	KindCountMin    Kind = "COUNT_MIN"   // at least MinCount children
	KindUnsupported Kind = "UNSUPPORTED" // shape the engine declines to interpret
)

// Kinds lists the v2 kinds accepted on the wire, in declaration order.
var Kinds = []Kind{KindCourseSet, KindAllOf, KindNOf, KindCountMin}

// IsKnown returns true if k is one of the wire-level v2 kinds.
func (k Kind) IsKnown() bool {
	switch k {
	case KindCourseSet, KindAllOf, KindNOf, KindCountMin:
		return true
	}
	return false
}

// IsCardinality returns true for kinds that count satisfied children.
func (k Kind) IsCardinality() bool {
	return k == KindAllOf || k == KindNOf || k == KindCountMin
}

// Node is a requirement rule node. Only the fields relevant to Kind are set:
//
//	COURSE_SET  Courses
//	ALL_OF      Children
//	N_OF        N, Children
//	COUNT_MIN   MinCount, Children (Courses is non-nil only when the input
//	            carried the forbidden shortcut field, so the validator can
//	            report it)
//	UNSUPPORTED Source, Reason
type Node struct {
	Kind     Kind     // Node variant
	Courses  []string // Course codes (COURSE_SET)
	N        int      // Required count (N_OF)
	MinCount int      // Required count (COUNT_MIN)
	Children []*Node  // Ordered children (cardinality kinds)

	Source any    // Original raw shape (UNSUPPORTED)
	Reason string // Why the node is unsupported (UNSUPPORTED)
}

// CourseSet creates a COURSE_SET leaf.
func CourseSet(courses ...string) *Node {
	return &Node{Kind: KindCourseSet, Courses: append([]string(nil), courses...)}
}

// AllOf creates an ALL_OF node.
func AllOf(children ...*Node) *Node {
	return &Node{Kind: KindAllOf, Children: append([]*Node(nil), children...)}
}

// NOf creates an N_OF node.
func NOf(n int, children ...*Node) *Node {
	return &Node{Kind: KindNOf, N: n, Children: append([]*Node(nil), children...)}
}

// CountMin creates a COUNT_MIN node.
func CountMin(minCount int, children ...*Node) *Node {
	return &Node{Kind: KindCountMin, MinCount: minCount, Children: append([]*Node(nil), children...)}
}

// Unsupported creates an UNSUPPORTED marker that keeps the original shape.
func Unsupported(source any, reason string) *Node {
	return &Node{Kind: KindUnsupported, Source: source, Reason: reason}
}

// IsUnsupported returns true if this node itself is an UNSUPPORTED marker.
func (n *Node) IsUnsupported() bool {
	return n.Kind == KindUnsupported || !n.Kind.IsKnown()
}

// Required returns how many satisfied children the node needs.
// ALL_OF needs every child; leaves and unsupported nodes return 0.
func (n *Node) Required() int {
	switch n.Kind {
	case KindAllOf:
		return len(n.Children)
	case KindNOf:
		return n.N
	case KindCountMin:
		return n.MinCount
	default:
		return 0
	}
}

// Course returns the course code of a COURSE_SET leaf, or "" when the leaf
// does not hold exactly one course.
func (n *Node) Course() string {
	if n.Kind != KindCourseSet || len(n.Courses) != 1 {
		return ""
	}
	return n.Courses[0]
}

// HasUnsupported returns true if the node or any descendant is unsupported.
func (n *Node) HasUnsupported() bool {
	found := false
	_ = Walk(n, func(node *Node, _ Path) error {
		if node.IsUnsupported() {
			found = true
			return ErrStopWalk
		}
		return nil
	})
	return found
}

// Size returns the number of nodes in the tree rooted at n.
func (n *Node) Size() int {
	count := 0
	_ = Walk(n, func(*Node, Path) error {
		count++
		return nil
	})
	return count
}

// Clone returns a deep copy of the tree. Source values of unsupported nodes
// are shared, since they are treated as read-only.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Courses != nil {
		c.Courses = make([]string, len(n.Courses))
		copy(c.Courses, n.Courses)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}
