// Package injector implements spec.md §4.3's SymbolInjector: the step
// that makes a library symbol's definition available inside a schematic
// document (by copying it into lib_symbols) and gives it an off-sheet
// template instance that later placements clone from.
package injector

import (
	"fmt"

	"github.com/mixelpixx/kicad-mcp-server/pkg/idgen"
	"github.com/mixelpixx/kicad-mcp-server/pkg/libindex"
	"github.com/mixelpixx/kicad-mcp-server/pkg/logx"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// templateSpacing is the vertical distance between successive template
// instances, so minting a new one never overlaps an existing template.
const templateSpacing = 10.0

// templateBaseX and templateBaseY anchor the off-sheet template column,
// per spec.md §4.3 ("a fixed off-sheet position such as (-100, -100)").
const (
	templateBaseX = -100.0
	templateBaseY = -100.0
)

// Injector wires a pkg/libindex.Index into the schematic mutation it
// serves. One instance is reused process-wide per symbol directory set.
type Injector struct {
	Symbols *libindex.Index
}

// New builds an Injector over an already-constructed symbol index.
func New(symbols *libindex.Index) *Injector {
	return &Injector{Symbols: symbols}
}

// EnsurePresent guarantees that path's document has a SymbolDefinition
// for library:symbol in its lib_symbols section and a TemplateInstance
// referencing it, writing the document back only if it changed anything.
// Idempotent: calling it twice with the same arguments is a no-op on the
// second call.
func (inj *Injector) EnsurePresent(path, library, symbol string) error {
	root, err := schematic.Load(path)
	if err != nil {
		return err
	}

	changed, err := inj.EnsurePresentIn(root, library, symbol)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return schematic.Save(path, root)
}

// EnsurePresentIn performs the in-memory half of EnsurePresent, exported
// so ComponentEditor.PlaceSymbol can call it against a document it
// already holds open without an extra load/save round trip.
func (inj *Injector) EnsurePresentIn(root *sx.Node, library, symbol string) (changed bool, err error) {
	fqn := schematic.FQN(library, symbol)
	libSymbols := schematic.EnsureLibSymbols(root)

	if _, ok := schematic.FindSymbolDefinition(libSymbols, fqn); !ok {
		def, err := inj.Symbols.ExtractDefinition(library, symbol)
		if err != nil {
			return false, err
		}
		sx.Append(libSymbols, def)
		changed = true
		logx.L().WithField("symbol", fqn).Info("spliced symbol definition into lib_symbols")
	}

	if !inj.hasTemplate(root, library, symbol) {
		inj.appendTemplate(root, libSymbols, library, symbol)
		changed = true
	}
	return changed, nil
}

func (inj *Injector) hasTemplate(root *sx.Node, library, symbol string) bool {
	want := schematic.TemplateReference(library, symbol)
	for _, inst := range schematic.PlacedInstances(root) {
		if schematic.Reference(inst) == want {
			return true
		}
	}
	return false
}

// appendTemplate mints a fresh TemplateInstance and appends it to root.
// Its position is chosen from the count of templates already present, so
// repeated injections across a session stack vertically without collision.
func (inj *Injector) appendTemplate(root *sx.Node, libSymbols *sx.Node, library, symbol string) {
	k := inj.templateCount(root)
	fqn := schematic.FQN(library, symbol)
	ref := schematic.TemplateReference(library, symbol)

	value := symbol
	if def, ok := schematic.FindSymbolDefinition(libSymbols, fqn); ok {
		if v, _, ok := schematic.Property(def, "Value"); ok && v != "" {
			value = v
		}
	}

	instance := sx.List(
		sx.Sym("symbol"),
		sx.List(sx.Sym("lib_id"), sx.Str(fqn)),
		sx.List(sx.Sym("at"), sx.Float(templateBaseX), sx.Float(templateBaseY-templateSpacing*float64(k)), sx.Int(0)),
		sx.List(sx.Sym("unit"), sx.Int(1)),
		sx.List(sx.Sym("in_bom"), sx.Sym("no")),
		sx.List(sx.Sym("on_board"), sx.Sym("no")),
		sx.List(sx.Sym("dnp"), sx.Sym("yes")),
		sx.List(sx.Sym("uuid"), sx.Str(idgen.New())),
		sx.List(sx.Sym("property"), sx.Str("Reference"), sx.Str(ref), sx.List(sx.Sym("at"), sx.Float(templateBaseX), sx.Float(templateBaseY-templateSpacing*float64(k)), sx.Int(0))),
		sx.List(sx.Sym("property"), sx.Str("Value"), sx.Str(value), sx.List(sx.Sym("at"), sx.Float(templateBaseX), sx.Float(templateBaseY-templateSpacing*float64(k)), sx.Int(0))),
		sx.List(sx.Sym("property"), sx.Str("Footprint"), sx.Str(""), sx.List(sx.Sym("at"), sx.Float(templateBaseX), sx.Float(templateBaseY-templateSpacing*float64(k)), sx.Int(0))),
		sx.List(sx.Sym("property"), sx.Str("Datasheet"), sx.Str(""), sx.List(sx.Sym("at"), sx.Float(templateBaseX), sx.Float(templateBaseY-templateSpacing*float64(k)), sx.Int(0))),
	)
	sx.Append(root, instance)
	logx.L().WithFields(map[string]interface{}{"reference": ref, "slot": k}).Info("minted template instance")
}

// templateCount counts existing templates, used to pick the next free
// vertical slot.
func (inj *Injector) templateCount(root *sx.Node) int {
	count := 0
	for _, inst := range schematic.PlacedInstances(root) {
		if schematic.IsTemplateReference(schematic.Reference(inst)) {
			count++
		}
	}
	return count
}

// TemplateInstance returns the template SymbolInstance for library:symbol
// if one is present, for callers (ComponentEditor) that need to clone it.
func TemplateInstance(root *sx.Node, library, symbol string) (*sx.Node, bool) {
	want := schematic.TemplateReference(library, symbol)
	for _, inst := range schematic.PlacedInstances(root) {
		if schematic.Reference(inst) == want {
			return inst, true
		}
	}
	return nil, false
}

// Describe renders a human-readable identifier for log/error messages.
func Describe(library, symbol string) string {
	return fmt.Sprintf("%s:%s", library, symbol)
}
