package ast

import (
	"errors"
	"strconv"
	"strings"
)

// ErrStopWalk can be returned by a WalkFunc to end traversal early without
// reporting an error from Walk.
var ErrStopWalk = errors.New("stop walk")

// Path locates a node inside a tree as the sequence of child indexes from the
// root. The root has an empty path.
type Path []int

// Child returns the path of the i-th child. The receiver is not modified.
func (p Path) Child(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// String renders the path as a JSONPath-like expression, e.g. "$.children[0].children[2]".
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, i := range p {
		sb.WriteString(".children[")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString("]")
	}
	return sb.String()
}

// WalkFunc is called for each node visited by Walk.
type WalkFunc func(node *Node, path Path) error

// Walk traverses the tree pre-order, visiting children in stored order.
// It returns the first error returned by fn, except ErrStopWalk which ends the
// traversal and makes Walk return nil.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	err := walk(root, nil, fn)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func walk(node *Node, path Path, fn WalkFunc) error {
	if err := fn(node, path); err != nil {
		return err
	}
	for i, child := range node.Children {
		if child == nil {
			continue
		}
		if err := walk(child, path.Child(i), fn); err != nil {
			return err
		}
	}
	return nil
}
