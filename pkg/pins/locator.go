// Package pins implements spec.md §4.5's PinLocator: resolving a placed
// instance and a pin identifier to an absolute point on the schematic
// canvas, accounting for the instance's rotation and the document's grid.
//
// This is distinct from pkg/schematic's pin helpers, which only expose a
// SymbolDefinition's local (pre-placement) pin geometry; PinLocator is the
// engine that turns that local geometry into a document-space coordinate
// for a specific instance, and caches the result per schematic file.
package pins

import (
	"os"

	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// instancePins is one placed instance's pose and definition, cached so
// Resolve can re-run schematic.FindPin's ambiguity check per lookup
// instead of precomputing an identifier map that would silently let a
// later pin overwrite an earlier one sharing the same number or name.
type instancePins struct {
	def       *sx.Node
	x, y, deg float64
}

// cacheEntry memoizes every placed instance's pose and definition for one
// schematic file, keyed by instance UUID.
type cacheEntry struct {
	modTime int64
	byUUID  map[string]instancePins
}

// Locator resolves pins against schematic documents, memoizing results
// per absolute file path until the file's modification time changes.
// Per spec.md §5 this needs no lock: the engine processes one request at
// a time.
type Locator struct {
	cache map[string]cacheEntry
}

// New builds an empty Locator.
func New() *Locator {
	return &Locator{cache: map[string]cacheEntry{}}
}

// Resolve returns the absolute document-space point where pinID attaches
// on the instance identified by reference, within the schematic at path.
func (l *Locator) Resolve(path, reference, pinID string) (geom.Point, error) {
	entry, err := l.entryFor(path)
	if err != nil {
		return geom.Point{}, err
	}

	root, err := schematic.Load(path)
	if err != nil {
		return geom.Point{}, err
	}
	var instance *sx.Node
	for _, inst := range schematic.PlacedInstances(root) {
		if schematic.Reference(inst) == reference {
			instance = inst
			break
		}
	}
	if instance == nil {
		return geom.Point{}, kerrors.New(kerrors.InstanceNotFound, "no instance with reference %q", reference)
	}

	uuid := schematic.UUID(instance)
	ip, ok := entry.byUUID[uuid]
	if !ok {
		return geom.Point{}, kerrors.New(kerrors.BadCoordinate, "instance %q has no resolvable pins", reference)
	}

	pd, found, ambiguous := schematic.FindPin(ip.def, pinID)
	if ambiguous {
		return geom.Point{}, kerrors.New(kerrors.AmbiguousReference, "instance %q has more than one pin matching %q", reference, pinID)
	}
	if !found {
		return geom.Point{}, kerrors.New(kerrors.BadCoordinate, "instance %q has no pin %q", reference, pinID)
	}
	return ResolvePoint(pd, ip.x, ip.y, ip.deg), nil
}

// entryFor returns the cached resolution table for path, rebuilding it if
// the file has changed since the last call.
func (l *Locator) entryFor(path string) (cacheEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cacheEntry{}, kerrors.Wrap(kerrors.IOError, err, "stat %s", path)
	}
	mtime := info.ModTime().UnixNano()

	if entry, ok := l.cache[path]; ok && entry.modTime == mtime {
		return entry, nil
	}

	entry, err := l.build(path)
	if err != nil {
		return cacheEntry{}, err
	}
	entry.modTime = mtime
	l.cache[path] = entry
	return entry, nil
}

func (l *Locator) build(path string) (cacheEntry, error) {
	root, err := schematic.Load(path)
	if err != nil {
		return cacheEntry{}, err
	}
	libSymbols, _ := sx.FindFirst(root, "lib_symbols")

	entry := cacheEntry{byUUID: map[string]instancePins{}}
	for _, instance := range schematic.PlacedInstances(root) {
		uuid := schematic.UUID(instance)
		if uuid == "" {
			continue
		}
		def, ok := schematic.FindSymbolDefinition(libSymbols, schematic.LibID(instance))
		if !ok {
			continue
		}
		ox, oy, angle := instancePose(instance)
		entry.byUUID[uuid] = instancePins{def: def, x: ox, y: oy, deg: angle}
	}
	return entry, nil
}

// instancePose reads a placed instance's (x, y, angle) pose from its
// (at ...) field.
func instancePose(instance *sx.Node) (x, y, angle float64) {
	at, ok := sx.FindFirst(instance, "at")
	if !ok {
		return 0, 0, 0
	}
	x, _ = sx.FloatAt(at, 1)
	y, _ = sx.FloatAt(at, 2)
	angle, _ = sx.FloatAt(at, 3)
	return x, y, angle
}

// ResolvePoint applies an instance's rotation and translation to a pin's
// local attach point, then snaps to the document grid. Exported so
// pkg/wires and pkg/nets can resolve one-off points without going through
// the caching Locator when they already hold a parsed definition.
func ResolvePoint(pd schematic.PinDef, instanceX, instanceY, instanceAngleDeg float64) geom.Point {
	local := pd.AttachPoint()
	rotated := geom.RotateAbout(local, instanceAngleDeg)
	return geom.Snap(geom.Point{X: instanceX + rotated.X, Y: instanceY + rotated.Y})
}
