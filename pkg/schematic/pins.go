package schematic

import (
	"math"

	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// PinDef is a symbol definition's local pin geometry, grounded on the
// teacher's schematic.Pin (pkg/kicad/schematic/types.go) but trimmed to
// what PinLocator needs.
type PinDef struct {
	Number string
	Name   string
	Local  geom.Point // local (x, y) before applying pin length
	Angle  float64    // local angle, one of 0/90/180/270
	Length float64
}

// AttachPoint returns the pin's electrical attachment point in the
// symbol's local frame, per spec.md §3 PinDefinition invariant:
// (x + length*cos(angle), y + length*sin(angle)).
func (p PinDef) AttachPoint() geom.Point {
	rad := p.Angle * math.Pi / 180.0
	return geom.Point{
		X: p.Local.X + p.Length*math.Cos(rad),
		Y: p.Local.Y + p.Length*math.Sin(rad),
	}
}

// Pins returns every pin definition across all units of a SymbolDefinition.
func Pins(definition *sx.Node) []PinDef {
	var out []PinDef
	for _, unit := range sx.FindAll(definition, "symbol") {
		out = append(out, pinsInUnit(unit)...)
	}
	// Some single-unit symbols (notably library entries with no nested
	// unit wrapper) keep their pins directly under the definition.
	out = append(out, pinsInUnit(definition)...)
	return out
}

func pinsInUnit(unit *sx.Node) []PinDef {
	var out []PinDef
	for _, pn := range sx.FindAll(unit, "pin") {
		pin := PinDef{}
		if atNode, ok := sx.FindFirst(pn, "at"); ok {
			x, _ := sx.FloatAt(atNode, 1)
			y, _ := sx.FloatAt(atNode, 2)
			angle, err := sx.FloatAt(atNode, 3)
			if err != nil {
				angle = 0
			}
			pin.Local = geom.Point{X: x, Y: y}
			pin.Angle = angle
		}
		if lenNode, ok := sx.FindFirst(pn, "length"); ok {
			pin.Length, _ = sx.FloatAt(lenNode, 1)
		}
		if nameNode, ok := sx.FindFirst(pn, "name"); ok {
			pin.Name, _ = sx.StringAt(nameNode, 1)
		}
		if numNode, ok := sx.FindFirst(pn, "number"); ok {
			pin.Number, _ = sx.StringAt(numNode, 1)
		}
		out = append(out, pin)
	}
	return out
}

// FindPin resolves a pin identifier (tried as a number first, then as a
// name) within a definition's pin set. Ambiguity (more than one pin
// sharing the identifier) is reported to the caller via found=false and
// ambiguous=true so PinLocator can produce the right error kind.
func FindPin(definition *sx.Node, identifier string) (pin PinDef, found bool, ambiguous bool) {
	pins := Pins(definition)

	var byNumber []PinDef
	for _, p := range pins {
		if p.Number == identifier {
			byNumber = append(byNumber, p)
		}
	}
	if len(byNumber) == 1 {
		return byNumber[0], true, false
	}
	if len(byNumber) > 1 {
		return PinDef{}, false, true
	}

	var byName []PinDef
	for _, p := range pins {
		if p.Name == identifier {
			byName = append(byName, p)
		}
	}
	if len(byName) == 1 {
		return byName[0], true, false
	}
	if len(byName) > 1 {
		return PinDef{}, false, true
	}
	return PinDef{}, false, false
}
