package sx

import (
	"io"
	"strconv"
	"strings"

	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
)

// Parse reads all top-level S-expressions from r. Almost every document
// this system edits has exactly one top-level list (the document root),
// but the grammar itself permits more than one, mirroring the teacher's
// ParseAll.
func Parse(r io.Reader) ([]*Node, error) {
	p := &parser{lex: newLexer(r)}
	if err := p.advance(); err != nil {
		return nil, kerrors.Wrap(kerrors.BadGrammar, err, "tokenizing input")
	}

	var out []*Node
	for p.cur.typ != tokEOF {
		n, err := p.parseExpr()
		if err != nil {
			return nil, kerrors.Wrap(kerrors.BadGrammar, err, "parsing s-expression")
		}
		out = append(out, n)
		if err := p.advance(); err != nil {
			return nil, kerrors.Wrap(kerrors.BadGrammar, err, "tokenizing input")
		}
	}
	return out, nil
}

// ParseOne parses text expected to hold exactly one top-level expression
// (the common case: a whole document).
func ParseOne(r io.Reader) (*Node, error) {
	all, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, kerrors.New(kerrors.BadGrammar, "empty document")
	}
	return all[0], nil
}

// ParseString is a convenience wrapper around Parse for literal text,
// used heavily by tests.
func ParseString(s string) (*Node, error) {
	return ParseOne(strings.NewReader(s))
}

type parser struct {
	lex *lexer
	cur token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) parseExpr() (*Node, error) {
	switch p.cur.typ {
	case tokLeftParen:
		return p.parseList()
	case tokString:
		return Str(p.cur.val), nil
	case tokBare:
		return classifyAtom(p.cur.val), nil
	case tokRightParen:
		return nil, &parseError{"unexpected ')'"}
	case tokEOF:
		return nil, &parseError{"unexpected end of input"}
	default:
		return nil, &parseError{"unrecognized token"}
	}
}

func (p *parser) parseList() (*Node, error) {
	var children []*Node
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.typ == tokRightParen {
			return &Node{Kind: KindList, Children: children}, nil
		}
		if p.cur.typ == tokEOF {
			return nil, &parseError{"unclosed '('"}
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		children = append(children, elem)
	}
}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

// classifyAtom decides whether a bare (unquoted) token is an integer, a
// float, or a plain symbol. This is the piece the teacher's codec never
// needed: it only ever read fields back out as strings. Keeping the
// distinction is what lets the serializer avoid emitting a float where
// an int is expected (spec.md §4.1/§4.3's "known historical defect").
func classifyAtom(s string) *Node {
	if s == "" {
		return Sym(s)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && isPlainInt(s) {
		return Int(i)
	}
	if looksFloat(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	}
	return Sym(s)
}

// isPlainInt rejects tokens strconv would parse as an int but that are
// not integer literals in this grammar, e.g. a leading '+'. A bare token
// with leading zeros such as 0603 is accepted and reads as Int(603);
// KiCad writes footprint codes like 0603 as quoted strings, so they never
// reach this check.
func isPlainInt(s string) bool {
	i := 0
	if s[0] == '-' {
		i = 1
	}
	if i >= len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func looksFloat(s string) bool {
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i = 1
	}
	if i >= len(s) {
		return false
	}
	sawDigit, sawDot, sawExp := false, false, false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' && !sawDot && !sawExp:
			sawDot = true
		case (c == 'e' || c == 'E') && sawDigit && !sawExp:
			sawExp = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
		default:
			return false
		}
	}
	return sawDigit && (sawDot || sawExp)
}
