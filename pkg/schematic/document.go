// Package schematic provides the document-shape knowledge the edit
// engine needs for .kicad_sch-style files: section tags, the fixed
// magic/version header, and accessors over the raw pkg/sx tree. Unlike
// the teacher's read-only pkg/kicad/schematic (which built a fully
// materialized Schematic struct for rendering), every edit operation
// here works directly against the pkg/sx tree, the way spec.md §4
// describes the engine operating — so this package is accessors, not an
// object model.
package schematic

import (
	"github.com/mixelpixx/kicad-mcp-server/pkg/idgen"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// RootTag is the magic tag identifying a schematic document.
const RootTag = "kicad_sch"

// FixedVersion is the version this system targets. spec.md §3: "The
// version is fixed per release of the system, not discovered from the
// input" — this constant is what NewEmpty stamps on brand-new documents.
// Existing documents keep whatever version they were written with;
// engine operations never rewrite a document's own version field.
const FixedVersion = 20231120

// FixedGenerator is the generator tag NewEmpty stamps on brand-new
// documents. Existing documents keep whatever generator they carry.
const FixedGenerator = "kicad-mcp-server"

// TemplateRefPrefix marks a SymbolInstance as an off-sheet clone source
// rather than a placed component (spec.md §3, TemplateInstance).
const TemplateRefPrefix = "_TEMPLATE_"

// Load reads and validates a schematic document, failing with
// kerrors.BadGrammar if the root tag doesn't match.
func Load(path string) (*sx.Node, error) {
	root, err := sx.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := sx.RequireTag(root, RootTag); err != nil {
		return nil, err
	}
	return root, nil
}

// Save writes root back to path atomically.
func Save(path string, root *sx.Node) error {
	return sx.WriteFileAtomic(path, root)
}

// NewEmpty builds a brand-new, valid schematic document with no symbols,
// wires, or labels: the basis for the create_schematic transport command
// (SPEC_FULL.md §C.1).
func NewEmpty(paper string) *sx.Node {
	if paper == "" {
		paper = "A4"
	}
	return sx.List(
		sx.Sym(RootTag),
		sx.List(sx.Sym("version"), sx.Int(FixedVersion)),
		sx.List(sx.Sym("generator"), sx.Str(FixedGenerator)),
		sx.List(sx.Sym("generator_version"), sx.Str("1.0")),
		sx.List(sx.Sym("uuid"), sx.Str(idgen.New())),
		sx.List(sx.Sym("paper"), sx.Str(paper)),
		sx.List(sx.Sym("lib_symbols")),
		sx.List(sx.Sym("sheet_instances"),
			sx.List(sx.Sym("path"), sx.Str("/"), sx.List(sx.Sym("page"), sx.Str("1"))),
		),
	)
}

// EnsureLibSymbols returns the document's lib_symbols section, creating
// it immediately after the header sections if it is missing (spec.md
// §4.3 step 2: "create it at the canonical position").
func EnsureLibSymbols(root *sx.Node) *sx.Node {
	if sec, ok := sx.FindFirst(root, "lib_symbols"); ok {
		return sec
	}
	sec := sx.List(sx.Sym("lib_symbols"))
	insertAfterHeader(root, sec)
	return sec
}

// insertAfterHeader splices a new section in right after the last of
// version/generator/generator_version/uuid/paper/title_block, whichever
// is present last, preserving every other section's relative order.
func insertAfterHeader(root *sx.Node, section *sx.Node) {
	headerTags := []string{"version", "generator", "generator_version", "uuid", "paper", "title_block"}
	insertAt := 1 // right after the root tag at minimum
	for i, ch := range root.Children {
		if ch.IsList() {
			for _, tag := range headerTags {
				if ch.Tag() == tag && i+1 > insertAt {
					insertAt = i + 1
				}
			}
		}
	}
	children := make([]*sx.Node, 0, len(root.Children)+1)
	children = append(children, root.Children[:insertAt]...)
	children = append(children, section)
	children = append(children, root.Children[insertAt:]...)
	root.Children = children
}

// FindSymbolDefinition looks up a SymbolDefinition by fully-qualified
// name inside the lib_symbols section.
func FindSymbolDefinition(libSymbols *sx.Node, fqn string) (*sx.Node, bool) {
	for _, def := range sx.FindAll(libSymbols, "symbol") {
		if name, err := sx.StringAt(def, 1); err == nil && name == fqn {
			return def, true
		}
	}
	return nil, false
}

// PlacedInstances returns every top-level placed SymbolInstance
// (including templates) in document order.
func PlacedInstances(root *sx.Node) []*sx.Node {
	return sx.FindAll(root, "symbol")
}

// FQN builds a "library:symbol" fully-qualified name.
func FQN(library, symbol string) string { return library + ":" + symbol }

// ParseFQN splits a "library:symbol" name. Returns ok=false if there is
// no colon.
func ParseFQN(fqn string) (library, symbol string, ok bool) {
	for i := 0; i < len(fqn); i++ {
		if fqn[i] == ':' {
			return fqn[:i], fqn[i+1:], true
		}
	}
	return "", "", false
}

// TemplateReference builds the reserved reference designator for the
// off-sheet clone source of a symbol.
func TemplateReference(library, symbol string) string {
	return TemplateRefPrefix + library + "_" + symbol
}

// IsTemplateReference reports whether ref names a template instance.
func IsTemplateReference(ref string) bool {
	return len(ref) >= len(TemplateRefPrefix) && ref[:len(TemplateRefPrefix)] == TemplateRefPrefix
}

// Property returns the value and node of the named property on a placed
// instance (or symbol definition), or ("", nil, false) if absent.
func Property(instance *sx.Node, key string) (value string, node *sx.Node, ok bool) {
	for _, p := range sx.FindAll(instance, "property") {
		k, err := sx.StringAt(p, 1)
		if err != nil || k != key {
			continue
		}
		v, _ := sx.StringAt(p, 2)
		return v, p, true
	}
	return "", nil, false
}

// SetProperty overwrites the value of an existing property, or appends a
// new (property "key" "value" ...) node if none exists yet.
func SetProperty(instance *sx.Node, key, value string) {
	if _, node, ok := Property(instance, key); ok {
		node.Children[2] = sx.Str(value)
		return
	}
	sx.Append(instance, sx.List(sx.Sym("property"), sx.Str(key), sx.Str(value)))
}

// Reference returns a placed instance's Reference property value.
func Reference(instance *sx.Node) string {
	v, _, _ := Property(instance, "Reference")
	return v
}

// LibID returns a placed instance's lib_id value ("library:symbol").
func LibID(instance *sx.Node) string {
	if n, ok := sx.FindFirst(instance, "lib_id"); ok {
		v, _ := sx.StringAt(n, 1)
		return v
	}
	return ""
}

// UUID returns a placed instance's uuid value.
func UUID(instance *sx.Node) string {
	if n, ok := sx.FindFirst(instance, "uuid"); ok {
		v, _ := sx.StringAt(n, 1)
		return v
	}
	return ""
}

// RequireInstanceCount is a small guard used by ComponentEditor to turn a
// zero/ambiguous match into the right error kind.
func RequireInstanceCount(matches []*sx.Node, ref string) error {
	switch len(matches) {
	case 0:
		return kerrors.New(kerrors.InstanceNotFound, "no instance with reference %q", ref)
	case 1:
		return nil
	default:
		return kerrors.New(kerrors.AmbiguousReference, "%d instances match reference %q", len(matches), ref)
	}
}
