package sx

import (
	"strconv"
	"strings"
)

// inlineTags lists list-tags the serializer keeps on one line even
// though they are lists, because the downstream editor writes them that
// way: short fixed-shape fields like (at 10 20 90) or (xy 1 2). Anything
// else with list children is broken across lines, one child per line,
// matching spec.md §4.1 ("indented, one child per line for major
// sections").
var inlineTags = map[string]bool{
	"at": true, "xy": true, "start": true, "end": true, "mid": true,
	"center": true, "size": true, "width": true, "type": true,
	"color": true, "thickness": true, "offset": true, "rotate": true,
	"scale": true, "id": true, "page": true, "length": true,
	"diameter": true,
}

// Serialize renders a node tree back to text in the grammar the
// downstream editor accepts. Top-level documents are always lists, so
// the common entry point is Serialize(root).
func Serialize(n *Node) string {
	var b strings.Builder
	writeNode(&b, n, 0, true)
	b.WriteByte('\n')
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int, topLevel bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindSymbol:
		b.WriteString(escapeSymbol(n.Str))
	case KindString:
		writeQuoted(b, n.Str)
	case KindInt:
		b.WriteString(formatInt(n.Int))
	case KindFloat:
		b.WriteString(formatFloat(n.Float))
	case KindList:
		writeList(b, n, depth, topLevel)
	}
}

func writeList(b *strings.Builder, n *Node, depth int, topLevel bool) {
	b.WriteByte('(')
	block := shouldBreak(n)
	for i, ch := range n.Children {
		if i == 0 {
			writeNode(b, ch, depth+1, false)
			continue
		}
		if block {
			b.WriteByte('\n')
			writeIndent(b, depth+1)
		} else {
			b.WriteByte(' ')
		}
		writeNode(b, ch, depth+1, false)
	}
	if block && len(n.Children) > 0 {
		b.WriteByte('\n')
		writeIndent(b, depth)
	}
	b.WriteByte(')')
}

// shouldBreak decides whether a list's children (after the first, the
// tag) go one-per-line. A list breaks across lines when its tag is not a
// known inline shape and at least one child after the tag is itself a
// list.
func shouldBreak(n *Node) bool {
	if len(n.Children) == 0 {
		return false
	}
	tag := n.Tag()
	if inlineTags[tag] {
		return false
	}
	listChildren := 0
	for _, ch := range n.Children[1:] {
		if ch.IsList() {
			listChildren++
		}
	}
	return listChildren > 0
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteByte('\t')
	}
}

func escapeSymbol(s string) string { return s }

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
