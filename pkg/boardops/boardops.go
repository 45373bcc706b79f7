// Package boardops implements spec.md §4.8's BoardOpShim: placing,
// moving, and deleting footprints, and adding/removing copper tracks and
// vias on a board document.
package boardops

import (
	"sort"

	"github.com/mixelpixx/kicad-mcp-server/pkg/board"
	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/libindex"
	"github.com/mixelpixx/kicad-mcp-server/pkg/logx"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// Shim mutates footprints/tracks/vias on one board document, resolving
// footprint definitions through a footprint-library Index (the
// pkg/libindex analog of the schematic side's symbol library).
type Shim struct {
	Footprints *libindex.Index
}

// New builds a Shim over an already-constructed footprint index.
func New(footprints *libindex.Index) *Shim {
	return &Shim{Footprints: footprints}
}

// Placement describes a new footprint instance.
type Placement struct {
	Library         string
	Footprint       string
	Reference       string
	Value           string
	Position        geom.Point
	RotationDeg     float64
	Layer           string
	ExtraProperties map[string]string
}

// PlaceFootprint copies library:footprint's definition onto the board at
// the given position, stamping identity fields the same way
// components.PlaceSymbol does on the schematic side.
func (s *Shim) PlaceFootprint(path string, p Placement) error {
	def, err := s.Footprints.ExtractDefinition(p.Library, p.Footprint)
	if err != nil {
		return err
	}

	root, err := board.Load(path)
	if err != nil {
		return err
	}

	instance := def.Clone()
	setFootprintAt(instance, p.Position, p.RotationDeg)
	setFootprintLayer(instance, p.Layer)

	if u, ok := sx.FindFirst(instance, "uuid"); ok {
		u.Children = []*sx.Node{sx.Sym("uuid"), sx.Str(board.NewUUID())}
	} else {
		sx.Append(instance, sx.List(sx.Sym("uuid"), sx.Str(board.NewUUID())))
	}

	board.SetProperty(instance, "Reference", p.Reference)
	board.SetProperty(instance, "Value", p.Value)
	for _, k := range sortedKeys(p.ExtraProperties) {
		board.SetProperty(instance, k, p.ExtraProperties[k])
	}

	sx.Append(root, instance)
	if err := board.Save(path, root); err != nil {
		return err
	}
	logx.L().WithFields(map[string]interface{}{"reference": p.Reference, "library": p.Library, "footprint": p.Footprint}).Info("placed footprint")
	return nil
}

func setFootprintAt(footprint *sx.Node, pos geom.Point, rotationDeg float64) {
	snapped := geom.Snap(pos)
	angle := int64(geom.NormalizeAngle(rotationDeg))
	if at, ok := sx.FindFirst(footprint, "at"); ok {
		at.Children = []*sx.Node{sx.Sym("at"), sx.Float(snapped.X), sx.Float(snapped.Y), sx.Int(angle)}
		return
	}
	sx.Append(footprint, sx.List(sx.Sym("at"), sx.Float(snapped.X), sx.Float(snapped.Y), sx.Int(angle)))
}

func setFootprintLayer(footprint *sx.Node, layer string) {
	if layer == "" {
		return
	}
	if n, ok := sx.FindFirst(footprint, "layer"); ok {
		n.Children = []*sx.Node{sx.Sym("layer"), sx.Str(layer)}
		return
	}
	sx.Append(footprint, sx.List(sx.Sym("layer"), sx.Str(layer)))
}

func sortedKeys(extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MoveFootprint relocates the single footprint matching ref.
func (s *Shim) MoveFootprint(path, ref string, pos geom.Point, rotationDeg float64) error {
	root, err := board.Load(path)
	if err != nil {
		return err
	}
	matches := matchFootprints(root, ref)
	if err := board.RequireFootprintCount(matches, ref); err != nil {
		return err
	}
	setFootprintAt(matches[0], pos, rotationDeg)
	if err := board.Save(path, root); err != nil {
		return err
	}
	logx.L().WithField("reference", ref).Info("moved footprint")
	return nil
}

// DeleteFootprint removes every footprint matching ref, returning the
// count deleted (mirrors components.DeleteByReference: all matches, not
// just the first).
func (s *Shim) DeleteFootprint(path, ref string) (int, error) {
	root, err := board.Load(path)
	if err != nil {
		return 0, err
	}
	matches := matchFootprints(root, ref)
	if len(matches) == 0 {
		return 0, kerrors.New(kerrors.InstanceNotFound, "no footprint with reference %q", ref)
	}

	var indices []int
	for _, m := range matches {
		indices = append(indices, sx.IndexOf(root, m))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	for _, idx := range indices {
		sx.RemoveAt(root, idx)
	}

	if err := board.Save(path, root); err != nil {
		return 0, err
	}
	logx.L().WithFields(map[string]interface{}{"reference": ref, "count": len(matches)}).Info("deleted footprint")
	return len(matches), nil
}

func matchFootprints(root *sx.Node, ref string) []*sx.Node {
	var out []*sx.Node
	for _, fp := range board.Footprints(root) {
		if board.Reference(fp) == ref {
			out = append(out, fp)
		}
	}
	return out
}

// Footprint is a read-only summary of a placed footprint, for the board
// half of the get_components transport command.
type Footprint struct {
	Reference string
	Value     string
	Layer     string
	Position  geom.Point
	Rotation  float64
	UUID      string
}

// GetFootprints lists every footprint on the board, in document order.
func (s *Shim) GetFootprints(path string) ([]Footprint, error) {
	root, err := board.Load(path)
	if err != nil {
		return nil, err
	}
	var out []Footprint
	for _, fp := range board.Footprints(root) {
		value, _, _ := board.Property(fp, "Value")
		layer := ""
		if n, ok := sx.FindFirst(fp, "layer"); ok {
			layer, _ = sx.StringAt(n, 1)
		}
		f := Footprint{Reference: board.Reference(fp), Value: value, Layer: layer, UUID: board.UUID(fp)}
		if at, ok := sx.FindFirst(fp, "at"); ok {
			x, _ := sx.FloatAt(at, 1)
			y, _ := sx.FloatAt(at, 2)
			rot, _ := sx.FloatAt(at, 3)
			f.Position = geom.Point{X: x, Y: y}
			f.Rotation = rot
		}
		out = append(out, f)
	}
	return out, nil
}

// Track describes a straight copper segment to add.
type Track struct {
	From, To geom.Point
	Layer    string
	Width    float64
	Net      int64
}

// AddTrack appends a copper track segment.
func (s *Shim) AddTrack(path string, t Track) error {
	root, err := board.Load(path)
	if err != nil {
		return err
	}
	sx.Append(root, sx.List(
		sx.Sym("segment"),
		sx.List(sx.Sym("start"), sx.Float(t.From.X), sx.Float(t.From.Y)),
		sx.List(sx.Sym("end"), sx.Float(t.To.X), sx.Float(t.To.Y)),
		sx.List(sx.Sym("width"), sx.Float(t.Width)),
		sx.List(sx.Sym("layer"), sx.Str(t.Layer)),
		sx.List(sx.Sym("net"), sx.Int(t.Net)),
		sx.List(sx.Sym("uuid"), sx.Str(board.NewUUID())),
	))
	if err := board.Save(path, root); err != nil {
		return err
	}
	logx.L().WithFields(map[string]interface{}{"from": t.From, "to": t.To, "layer": t.Layer}).Info("added track")
	return nil
}

// Via describes a through-hole via to add.
type Via struct {
	At          geom.Point
	Size, Drill float64
	Layers      [2]string
	Net         int64
}

// AddVia appends a via.
func (s *Shim) AddVia(path string, v Via) error {
	root, err := board.Load(path)
	if err != nil {
		return err
	}
	sx.Append(root, sx.List(
		sx.Sym("via"),
		sx.List(sx.Sym("at"), sx.Float(v.At.X), sx.Float(v.At.Y)),
		sx.List(sx.Sym("size"), sx.Float(v.Size)),
		sx.List(sx.Sym("drill"), sx.Float(v.Drill)),
		sx.List(sx.Sym("layers"), sx.Str(v.Layers[0]), sx.Str(v.Layers[1])),
		sx.List(sx.Sym("net"), sx.Int(v.Net)),
		sx.List(sx.Sym("uuid"), sx.Str(board.NewUUID())),
	))
	if err := board.Save(path, root); err != nil {
		return err
	}
	logx.L().WithField("at", v.At).Info("added via")
	return nil
}

// DeleteTracks removes every segment whose net matches netFilter,
// following the snapshot-then-delete discipline spec.md §4.8 requires:
// the set of victims is computed before any mutation, so a track added
// mid-filter by a racing caller (impossible under the single-threaded
// model, but kept as the documented discipline) is never half-deleted.
func (s *Shim) DeleteTracks(path string, netFilter int64) (int, error) {
	root, err := board.Load(path)
	if err != nil {
		return 0, err
	}

	var victims []int
	for _, seg := range board.Tracks(root) {
		if n, ok := sx.FindFirst(seg, "net"); ok {
			if net, err := sx.IntAt(n, 1); err == nil && net == netFilter {
				victims = append(victims, sx.IndexOf(root, seg))
			}
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(victims)))
	for _, idx := range victims {
		sx.RemoveAt(root, idx)
	}

	if err := board.Save(path, root); err != nil {
		return 0, err
	}
	logx.L().WithFields(map[string]interface{}{"net": netFilter, "count": len(victims)}).Info("deleted tracks")
	return len(victims), nil
}
