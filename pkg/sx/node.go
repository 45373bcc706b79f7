// Package sx implements the S-expression codec shared by every document
// this system edits: a tree of atoms and lists, parsed from text and
// serialized back to text in the grammar the downstream editor expects.
//
// Grown from the teacher's read-only Sexp/Symbol/List trio
// (pkg/kicad/sexp/kicadsexp and pkg/kicad/parser/kicadsexp in the
// original tree) into a mutable, round-trippable tree: atoms keep their
// numeric kind (Int vs Float) instead of collapsing to strings, and the
// tree can be serialized back out, not just walked.
package sx

import (
	"strconv"
	"strings"
)

// Kind distinguishes the five node shapes the grammar supports.
type Kind int

const (
	KindList Kind = iota
	KindSymbol
	KindString
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Node is a single S-expression node: either an atom (Symbol, String,
// Int, Float) or a List of child nodes.
type Node struct {
	Kind     Kind
	Str      string  // Symbol / String value
	Int      int64   // Int value
	Float    float64 // Float value
	Children []*Node // List children
}

// Sym builds a bare-symbol atom (an unquoted identifier like `at` or `yes`).
func Sym(s string) *Node { return &Node{Kind: KindSymbol, Str: s} }

// Str builds a double-quoted string atom.
func Str(s string) *Node { return &Node{Kind: KindString, Str: s} }

// Int builds an integer atom. The serializer never emits a decimal point
// for this node, so an integer-typed field can never accidentally come
// out as a float literal.
func Int(n int64) *Node { return &Node{Kind: KindInt, Int: n} }

// Float builds a floating-point atom. The serializer always emits a
// decimal point for this node, even when the value is integral (10 -> "10.0").
func Float(f float64) *Node { return &Node{Kind: KindFloat, Float: f} }

// List builds a list node from the given children.
func List(children ...*Node) *Node { return &Node{Kind: KindList, Children: children} }

// IsAtom reports whether n is a leaf (non-list) node.
func (n *Node) IsAtom() bool { return n != nil && n.Kind != KindList }

// IsList reports whether n is a list node.
func (n *Node) IsList() bool { return n != nil && n.Kind == KindList }

// Head returns the first child of a list, or nil.
func (n *Node) Head() *Node {
	if n == nil || n.Kind != KindList || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Tag returns the leading symbol of a list node ("" if none), e.g. the
// "at" in (at 10 20 90) or the "symbol" in (symbol "Device:R" ...).
func (n *Node) Tag() string {
	h := n.Head()
	if h == nil || h.Kind != KindSymbol {
		return ""
	}
	return h.Str
}

// AsFloat returns the numeric value of an Int or Float atom.
func (n *Node) AsFloat() (float64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case KindFloat:
		return n.Float, true
	case KindInt:
		return float64(n.Int), true
	default:
		return 0, false
	}
}

// AsInt returns the integer value of an Int atom, or of a Float atom
// that happens to carry an integral value.
func (n *Node) AsInt() (int64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case KindInt:
		return n.Int, true
	case KindFloat:
		return int64(n.Float), true
	default:
		return 0, false
	}
}

// AsString returns the text of a Symbol or String atom.
func (n *Node) AsString() (string, bool) {
	if n == nil || (n.Kind != KindSymbol && n.Kind != KindString) {
		return "", false
	}
	return n.Str, true
}

// Clone deep-copies a node and all its descendants.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Str: n.Str, Int: n.Int, Float: n.Float}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Equal reports deep structural equality between two nodes.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindSymbol, KindString:
		return n.Str == o.Str
	case KindInt:
		return n.Int == o.Int
	case KindFloat:
		return n.Float == o.Float
	case KindList:
		if len(n.Children) != len(o.Children) {
			return false
		}
		for i := range n.Children {
			if !n.Children[i].Equal(o.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// GoString gives a debug-friendly compact rendering, independent of the
// pretty-printing rules in Serialize.
func (n *Node) GoString() string {
	var b strings.Builder
	writeCompact(&b, n)
	return b.String()
}

func writeCompact(b *strings.Builder, n *Node) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case KindSymbol:
		b.WriteString(n.Str)
	case KindString:
		b.WriteByte('"')
		b.WriteString(n.Str)
		b.WriteByte('"')
	case KindInt:
		b.WriteString(strconv.FormatInt(n.Int, 10))
	case KindFloat:
		b.WriteString(formatFloat(n.Float))
	case KindList:
		b.WriteByte('(')
		for i, ch := range n.Children {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeCompact(b, ch)
		}
		b.WriteByte(')')
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
