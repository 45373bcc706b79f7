// Package board mirrors pkg/schematic's accessor-over-pkg/sx approach for
// .kicad_pcb documents: footprints, tracks, and vias, read and mutated
// directly against the raw tree rather than through a materialized
// object model, the way spec.md §4.8 describes BoardOpShim operating.
package board

import (
	"github.com/mixelpixx/kicad-mcp-server/pkg/idgen"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// RootTag is the magic tag identifying a board document.
const RootTag = "kicad_pcb"

// FixedVersion is the board file format version this system targets,
// mirroring schematic.FixedVersion's rule: stamped on new documents,
// never rewritten on existing ones.
const FixedVersion = 20231120

// FixedGenerator identifies this system as a board's last writer.
const FixedGenerator = "kicad-mcp-server"

// Load reads and validates a board document.
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

// NewEmpty builds a brand-new board with no footprints, tracks, or vias:
// the basis for the create_board transport command (SPEC_FULL.md §C.1).
func NewEmpty() *sx.Node {
	return sx.List(
		sx.Sym(RootTag),
		sx.List(sx.Sym("version"), sx.Int(FixedVersion)),
		sx.List(sx.Sym("generator"), sx.Str(FixedGenerator)),
		sx.List(sx.Sym("generator_version"), sx.Str("1.0")),
		sx.List(sx.Sym("general"), sx.List(sx.Sym("thickness"), sx.Float(1.6))),
		sx.List(sx.Sym("layers"),
			sx.List(sx.Int(0), sx.Str("F.Cu"), sx.Sym("signal")),
			sx.List(sx.Int(31), sx.Str("B.Cu"), sx.Sym("signal")),
		),
	)
}

// Footprints returns every placed footprint in document order.
func Footprints(root *sx.Node) []*sx.Node {
	return sx.FindAll(root, "footprint")
}

// Tracks returns every straight copper track segment.
func Tracks(root *sx.Node) []*sx.Node {
	return sx.FindAll(root, "segment")
}

// Vias returns every via.
func Vias(root *sx.Node) []*sx.Node {
	return sx.FindAll(root, "via")
}

// Property mirrors schematic.Property for footprint nodes: KiCad 7+
// board files carry (property "Reference" "R1" ...) the same way
// schematic symbol instances do.
func Property(footprint *sx.Node, key string) (value string, node *sx.Node, ok bool) {
	for _, p := range sx.FindAll(footprint, "property") {
		k, err := sx.StringAt(p, 1)
		if err != nil || k != key {
			continue
		}
		v, _ := sx.StringAt(p, 2)
		return v, p, true
	}
	return "", nil, false
}

// SetProperty overwrites or appends a footprint property value.
func SetProperty(footprint *sx.Node, key, value string) {
	if _, node, ok := Property(footprint, key); ok {
		node.Children[2] = sx.Str(value)
		return
	}
	sx.Append(footprint, sx.List(sx.Sym("property"), sx.Str(key), sx.Str(value)))
}

// Reference returns a footprint's Reference property value.
func Reference(footprint *sx.Node) string {
	v, _, _ := Property(footprint, "Reference")
	return v
}

// UUID returns a footprint's uuid value.
func UUID(footprint *sx.Node) string {
	if n, ok := sx.FindFirst(footprint, "uuid"); ok {
		v, _ := sx.StringAt(n, 1)
		return v
	}
	return ""
}

// NewUUID mints a fresh identifier for a new footprint/track/via node.
func NewUUID() string { return idgen.New() }

// RequireFootprintCount turns a zero/ambiguous footprint match into the
// right error kind, mirroring schematic.RequireInstanceCount.
func RequireFootprintCount(matches []*sx.Node, ref string) error {
	switch len(matches) {
	case 0:
		return kerrors.New(kerrors.InstanceNotFound, "no footprint with reference %q", ref)
	case 1:
		return nil
	default:
		return kerrors.New(kerrors.AmbiguousReference, "%d footprints match reference %q", len(matches), ref)
	}
}
