// Package components implements spec.md §4.4's ComponentEditor: placing,
// deleting, editing, and listing symbol instances on a schematic.
package components

import (
	"sort"

	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/idgen"
	"github.com/mixelpixx/kicad-mcp-server/pkg/injector"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/logx"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// Editor mutates the symbol instances of one schematic document, using an
// Injector to guarantee a library definition and template exist first.
type Editor struct {
	Injector *injector.Injector
}

// New builds an Editor over an already-constructed Injector.
func New(inj *injector.Injector) *Editor {
	return &Editor{Injector: inj}
}

// Placement describes everything PlaceSymbol needs to stamp a new
// component instance onto a schematic.
type Placement struct {
	Library     string
	Symbol      string
	Reference   string
	Value       string
	Footprint   string
	Datasheet   string
	Position    geom.Point
	RotationDeg float64
	// ExtraProperties are set verbatim after the standard ones, per
	// SPEC_FULL.md §C.3 — arbitrary user fields beyond the four KiCad
	// bakes in (Reference/Value/Footprint/Datasheet).
	ExtraProperties map[string]string
}

// PlaceSymbol clones the library's template instance into a new placed
// component at the given position, per spec.md §4.4 step list:
// EnsurePresent, clone template, overwrite identity/geometry fields,
// clear the template's placeholder flags, append, write.
func (e *Editor) PlaceSymbol(path string, p Placement) error {
	root, err := schematic.Load(path)
	if err != nil {
		return err
	}

	if _, err := e.Injector.EnsurePresentIn(root, p.Library, p.Symbol); err != nil {
		return err
	}

	tmpl, ok := injector.TemplateInstance(root, p.Library, p.Symbol)
	if !ok {
		return kerrors.New(kerrors.SymbolNotFound, "template instance for %s:%s missing after injection", p.Library, p.Symbol)
	}

	instance := tmpl.Clone()
	setAt(instance, p.Position, p.RotationDeg)
	if at, ok := sx.FindFirst(instance, "uuid"); ok {
		at.Children = []*sx.Node{sx.Sym("uuid"), sx.Str(idgen.New())}
	} else {
		sx.Append(instance, sx.List(sx.Sym("uuid"), sx.Str(idgen.New())))
	}

	// Clear the sentinel flags a template carries so the placed instance
	// behaves like a normal component (spec.md §4.4: "footprint
	// propagation must not be silently dropped" — every property the
	// caller supplies, including an empty Footprint, is written).
	setFlag(instance, "in_bom", "yes")
	setFlag(instance, "on_board", "yes")
	setFlag(instance, "dnp", "no")

	schematic.SetProperty(instance, "Reference", p.Reference)
	schematic.SetProperty(instance, "Value", p.Value)
	schematic.SetProperty(instance, "Footprint", p.Footprint)
	schematic.SetProperty(instance, "Datasheet", p.Datasheet)
	for _, k := range sortedKeys(p.ExtraProperties) {
		schematic.SetProperty(instance, k, p.ExtraProperties[k])
	}

	sx.Append(root, instance)
	if err := schematic.Save(path, root); err != nil {
		return err
	}
	logx.L().WithFields(map[string]interface{}{
		"reference": p.Reference, "library": p.Library, "symbol": p.Symbol,
	}).Info("placed component")
	return nil
}

// sortedKeys returns extra's keys in sorted order, so repeated calls with
// the same map write properties in the same order.
func sortedKeys(extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setAt(instance *sx.Node, pos geom.Point, rotationDeg float64) {
	snapped := geom.Snap(pos)
	angle := int64(geom.NormalizeAngle(rotationDeg))
	if at, ok := sx.FindFirst(instance, "at"); ok {
		at.Children = []*sx.Node{sx.Sym("at"), sx.Float(snapped.X), sx.Float(snapped.Y), sx.Int(angle)}
		return
	}
	sx.Append(instance, sx.List(sx.Sym("at"), sx.Float(snapped.X), sx.Float(snapped.Y), sx.Int(angle)))
}

func setFlag(instance *sx.Node, tag, value string) {
	if n, ok := sx.FindFirst(instance, tag); ok {
		n.Children = []*sx.Node{sx.Sym(tag), sx.Sym(value)}
		return
	}
	sx.Append(instance, sx.List(sx.Sym(tag), sx.Sym(value)))
}

// DeleteByReference removes every placed instance matching ref (template
// instances are never matched — they carry a reserved reference prefix),
// returning the count deleted. spec.md §4.4: a reference may legitimately
// match more than one instance (e.g. multi-unit parts); all matches are
// removed, not just the first.
func (e *Editor) DeleteByReference(path, ref string) (int, error) {
	root, err := schematic.Load(path)
	if err != nil {
		return 0, err
	}

	if schematic.IsTemplateReference(ref) {
		return 0, kerrors.New(kerrors.InstanceNotFound, "no instance with reference %q", ref)
	}

	var matches []int
	for _, inst := range schematic.PlacedInstances(root) {
		if schematic.Reference(inst) == ref {
			matches = append(matches, sx.IndexOf(root, inst))
		}
	}
	if len(matches) == 0 {
		return 0, kerrors.New(kerrors.InstanceNotFound, "no instance with reference %q", ref)
	}

	// Delete in reverse position order so earlier indices stay valid as
	// later ones are removed.
	sort.Sort(sort.Reverse(sort.IntSlice(matches)))
	for _, idx := range matches {
		sx.RemoveAt(root, idx)
	}

	if err := schematic.Save(path, root); err != nil {
		return 0, err
	}
	logx.L().WithFields(map[string]interface{}{"reference": ref, "count": len(matches)}).Info("deleted component")
	return len(matches), nil
}

// EditProperties overwrites the given properties on the single instance
// matching ref. Zero or multiple matches are errors (spec.md §4.4:
// EditProperties requires an unambiguous target).
func (e *Editor) EditProperties(path, ref string, properties map[string]string) error {
	root, err := schematic.Load(path)
	if err != nil {
		return err
	}

	var matches []*sx.Node
	for _, inst := range schematic.PlacedInstances(root) {
		if schematic.Reference(inst) == ref {
			matches = append(matches, inst)
		}
	}
	if err := schematic.RequireInstanceCount(matches, ref); err != nil {
		return err
	}

	instance := matches[0]
	for _, k := range sortedKeys(properties) {
		schematic.SetProperty(instance, k, properties[k])
	}

	if err := schematic.Save(path, root); err != nil {
		return err
	}
	logx.L().WithFields(map[string]interface{}{"reference": ref, "properties": len(properties)}).Info("edited component properties")
	return nil
}

// Component is a read-only summary of a placed instance, for the
// get_components transport command (SPEC_FULL.md §C.2).
type Component struct {
	Reference string
	LibID     string
	Value     string
	Footprint string
	Position  geom.Point
	Rotation  float64
	UUID      string
}

// List returns every non-template placed instance on the schematic, in
// document order.
func List(path string) ([]Component, error) {
	root, err := schematic.Load(path)
	if err != nil {
		return nil, err
	}

	var out []Component
	for _, inst := range schematic.PlacedInstances(root) {
		ref := schematic.Reference(inst)
		if schematic.IsTemplateReference(ref) {
			continue
		}
		value, _, _ := schematic.Property(inst, "Value")
		footprint, _, _ := schematic.Property(inst, "Footprint")

		c := Component{
			Reference: ref,
			LibID:     schematic.LibID(inst),
			Value:     value,
			Footprint: footprint,
			UUID:      schematic.UUID(inst),
		}
		if at, ok := sx.FindFirst(inst, "at"); ok {
			x, _ := sx.FloatAt(at, 1)
			y, _ := sx.FloatAt(at, 2)
			rot, _ := sx.FloatAt(at, 3)
			c.Position = geom.Point{X: x, Y: y}
			c.Rotation = rot
		}
		out = append(out, c)
	}
	return out, nil
}
