// Package nets implements spec.md §4.7's NetTracer: deriving named net
// connectivity from a schematic's wires, labels, and placed component
// pins, without KiCad's own netlist export step.
package nets

import (
	"sort"

	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/pins"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// endpointTolerance is the distance under which two wire endpoints are
// treated as the same point, per spec.md §4.7 (one grid unit).
const endpointTolerance = geom.Grid

// PinConnection names one component pin reached by a net.
type PinConnection struct {
	Reference string
	Pin       string
}

// Tracer derives net connectivity for a schematic, resolving pins through
// a shared Locator.
type Tracer struct {
	Pins *pins.Locator
}

// New builds a Tracer over an already-constructed pin Locator.
func New(locator *pins.Locator) *Tracer {
	return &Tracer{Pins: locator}
}

// unionFind is a small in-memory disjoint-set structure keyed by point
// index — the teacher never computes net connectivity, so this has no
// specific grounding file beyond being the standard way to group wire
// endpoints under coincidence.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}

// GetNetConnections names every component pin reachable from the wire
// graph attached to name, and optionally, any unwired pin within 10 units
// of that graph (nearestPinFallback), per spec.md §4.7. An unknown label
// name is not an error: it simply reaches nothing, so the result is an
// empty, nil slice.
func (t *Tracer) GetNetConnections(path, name string, nearestPinFallback bool) ([]PinConnection, error) {
	root, err := schematic.Load(path)
	if err != nil {
		return nil, err
	}

	points, groups := buildWireGraph(root)
	labelGroup, ok := findLabelGroup(root, name, points, groups)
	if !ok {
		return nil, nil
	}

	pinPoints, err := t.collectPinPoints(path, root)
	if err != nil {
		return nil, err
	}

	var out []PinConnection
	seen := map[PinConnection]bool{}
	for _, pp := range pinPoints {
		idx, ok := indexOf(points, pp.point)
		if ok && groups[idx] == labelGroup {
			if !seen[pp.conn] {
				seen[pp.conn] = true
				out = append(out, pp.conn)
			}
			continue
		}
		if !ok && nearestPinFallback && nearestWithin(pp.point, points, groups, labelGroup, 10) {
			if !seen[pp.conn] {
				seen[pp.conn] = true
				out = append(out, pp.conn)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Reference != out[j].Reference {
			return out[i].Reference < out[j].Reference
		}
		return out[i].Pin < out[j].Pin
	})
	return out, nil
}

// buildWireGraph collects every wire endpoint and unions endpoints that
// coincide within tolerance, returning the point list and each point's
// group id (an index into points itself, following union-find roots).
func buildWireGraph(root *sx.Node) ([]geom.Point, []int) {
	var points []geom.Point
	var wireRuns [][]int // indices into points belonging to the same wire

	for _, wire := range sx.FindAll(root, "wire") {
		pts, ok := sx.FindFirst(wire, "pts")
		if !ok {
			continue
		}
		var run []int
		for _, xy := range sx.FindAll(pts, "xy") {
			x, _ := sx.FloatAt(xy, 1)
			y, _ := sx.FloatAt(xy, 2)
			run = append(run, len(points))
			points = append(points, geom.Point{X: x, Y: y})
		}
		wireRuns = append(wireRuns, run)
	}

	uf := newUnionFind(len(points))

	// Every point on the same wire is electrically one node, not just its
	// endpoints — a wire drawn with intermediate bend points still
	// carries the same net along its whole length.
	for _, run := range wireRuns {
		for i := 1; i < len(run); i++ {
			uf.union(run[0], run[i])
		}
	}

	// Distinct wires (or a wire and itself) that share a coincident
	// endpoint under tolerance are the same net.
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if geom.Within(points[i], points[j], endpointTolerance) {
				uf.union(i, j)
			}
		}
	}

	groups := make([]int, len(points))
	for i := range points {
		groups[i] = uf.find(i)
	}
	return points, groups
}

// labelTags are every label record shape a net's name can be carried on
// (spec.md §3: local/global/hierarchical all name a net the same way).
var labelTags = []string{"label", "global_label", "hierarchical_label"}

// findLabelGroup finds the wire-graph group id that a label named `name`
// attaches to, by locating the label's nearest wire point within tolerance.
func findLabelGroup(root *sx.Node, name string, points []geom.Point, groups []int) (int, bool) {
	for _, tag := range labelTags {
		for _, label := range sx.FindAll(root, tag) {
			text, err := sx.StringAt(label, 1)
			if err != nil || text != name {
				continue
			}
			at, ok := sx.FindFirst(label, "at")
			if !ok {
				continue
			}
			x, _ := sx.FloatAt(at, 1)
			y, _ := sx.FloatAt(at, 2)
			labelPoint := geom.Point{X: x, Y: y}
			for i, p := range points {
				if geom.Within(p, labelPoint, endpointTolerance) {
					return groups[i], true
				}
			}
		}
	}
	return 0, false
}

type pinPoint struct {
	point geom.Point
	conn  PinConnection
}

// collectPinPoints resolves every placed instance's pins to absolute
// points via the Locator.
func (t *Tracer) collectPinPoints(path string, root *sx.Node) ([]pinPoint, error) {
	var out []pinPoint
	for _, instance := range schematic.PlacedInstances(root) {
		ref := schematic.Reference(instance)
		if ref == "" || schematic.IsTemplateReference(ref) {
			continue
		}
		libSymbols, _ := sx.FindFirst(root, "lib_symbols")
		def, ok := schematic.FindSymbolDefinition(libSymbols, schematic.LibID(instance))
		if !ok {
			continue
		}
		for _, pd := range schematic.Pins(def) {
			point, err := t.Pins.Resolve(path, ref, pd.Number)
			if err != nil {
				continue
			}
			out = append(out, pinPoint{point: point, conn: PinConnection{Reference: ref, Pin: pd.Number}})
		}
	}
	return out, nil
}

func indexOf(points []geom.Point, p geom.Point) (int, bool) {
	for i, q := range points {
		if geom.Within(q, p, endpointTolerance) {
			return i, true
		}
	}
	return 0, false
}

func nearestWithin(p geom.Point, points []geom.Point, groups []int, wantGroup int, maxDistance float64) bool {
	for i, q := range points {
		if groups[i] == wantGroup && geom.Distance(p, q) <= maxDistance {
			return true
		}
	}
	return false
}
