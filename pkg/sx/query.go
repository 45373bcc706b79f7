package sx

import (
	"fmt"

	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
)

// FindFirst returns the first direct child list tagged with key, e.g.
// FindFirst(symbolNode, "at") finds (at 10 20 90). Mirrors the teacher's
// sexp.FindNode, generalized to also match a bare symbol child (used for
// flag-like fields such as the bare `hide` token).
func FindFirst(n *Node, key string) (*Node, bool) {
	if n == nil || n.Kind != KindList {
		return nil, false
	}
	for _, ch := range n.Children {
		if ch == nil {
			continue
		}
		if ch.Kind == KindSymbol && ch.Str == key {
			return ch, true
		}
		if ch.Kind == KindList && ch.Tag() == key {
			return ch, true
		}
	}
	return nil, false
}

// FindAll returns every direct child list tagged with key, in document order.
func FindAll(n *Node, key string) []*Node {
	if n == nil || n.Kind != KindList {
		return nil
	}
	var out []*Node
	for _, ch := range n.Children {
		if ch != nil && ch.Kind == KindList && ch.Tag() == key {
			out = append(out, ch)
		}
	}
	return out
}

// HasSymbol reports whether a bare symbol atom equal to sym appears
// among n's direct children.
func HasSymbol(n *Node, sym string) bool {
	if n == nil || n.Kind != KindList {
		return false
	}
	for _, ch := range n.Children {
		if ch != nil && ch.Kind == KindSymbol && ch.Str == sym {
			return true
		}
	}
	return false
}

// Append adds child as the last element of parent.
func Append(parent *Node, child *Node) {
	parent.Children = append(parent.Children, child)
}

// Replace substitutes oldChild for newChild among parent's direct
// children, matched by pointer identity. Returns false if oldChild was
// not found.
func Replace(parent *Node, oldChild, newChild *Node) bool {
	for i, ch := range parent.Children {
		if ch == oldChild {
			parent.Children[i] = newChild
			return true
		}
	}
	return false
}

// RemoveAt deletes the child at index i from parent.
func RemoveAt(parent *Node, i int) {
	parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
}

// IndexOf returns the index of child among parent's direct children, or -1.
func IndexOf(parent *Node, child *Node) int {
	for i, ch := range parent.Children {
		if ch == child {
			return i
		}
	}
	return -1
}

// Remove deletes child from parent's direct children by identity.
func Remove(parent *Node, child *Node) bool {
	if i := IndexOf(parent, child); i >= 0 {
		RemoveAt(parent, i)
		return true
	}
	return false
}

// At returns the i'th direct child of a list (0 is the tag), or nil.
func At(n *Node, i int) *Node {
	if n == nil || n.Kind != KindList || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// StringAt extracts the text of a Symbol or String atom at index i.
func StringAt(n *Node, i int) (string, error) {
	a := At(n, i)
	if a == nil {
		return "", fmt.Errorf("index %d out of bounds", i)
	}
	s, ok := a.AsString()
	if !ok {
		return "", fmt.Errorf("expected atom at index %d, got %s", i, a.Kind)
	}
	return s, nil
}

// FloatAt extracts a numeric value at index i, accepting either an Int or Float atom.
func FloatAt(n *Node, i int) (float64, error) {
	a := At(n, i)
	f, ok := a.AsFloat()
	if !ok {
		return 0, fmt.Errorf("expected number at index %d", i)
	}
	return f, nil
}

// IntAt extracts an integer value at index i.
func IntAt(n *Node, i int) (int64, error) {
	a := At(n, i)
	v, ok := a.AsInt()
	if !ok {
		return 0, fmt.Errorf("expected integer at index %d", i)
	}
	return v, nil
}

// RequireTag validates that n is a list whose tag equals want, returning
// a BadGrammar error otherwise. Used at document-parse entry points.
func RequireTag(n *Node, want string) error {
	if n == nil || n.Kind != KindList {
		return kerrors.New(kerrors.BadGrammar, "expected (%s ...) list, got %s", want, describeKind(n))
	}
	if got := n.Tag(); got != want {
		return kerrors.New(kerrors.BadGrammar, "expected '%s', got '%s'", want, got)
	}
	return nil
}

func describeKind(n *Node) string {
	if n == nil {
		return "nil"
	}
	return n.Kind.String()
}
