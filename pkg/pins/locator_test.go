package pins

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

const resistorWithTemplate = `(kicad_sch
  (version 20231120)
  (generator test)
  (uuid "00000000-0000-0000-0000-000000000001")
  (paper "A4")
  (lib_symbols
    (symbol "Device:R"
      (property "Reference" "R" (at 0 0 0))
      (pin passive line (at 0 3.81 90) (length 1.27) (name "~") (number "1"))
      (pin passive line (at 0 -3.81 270) (length 1.27) (name "~") (number "2"))
    )
  )
  (symbol
    (lib_id "Device:R")
    (at 10 10 0)
    (uuid "00000000-0000-0000-0000-000000000002")
    (property "Reference" "R1" (at 10 10 0))
  )
)
`

func writeSchematic(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.kicad_sch")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveUnrotatedInstance(t *testing.T) {
	path := writeSchematic(t, resistorWithTemplate)
	loc := New()

	p1, err := loc.Resolve(path, "R1", "1")
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 10, Y: 15}, p1)

	p2, err := loc.Resolve(path, "R1", "2")
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 10, Y: 5}, p2)
}

func TestResolveUnknownPinIsBadCoordinate(t *testing.T) {
	path := writeSchematic(t, resistorWithTemplate)
	loc := New()
	_, err := loc.Resolve(path, "R1", "99")
	require.Error(t, err)
	assert.Equal(t, kerrors.BadCoordinate, kerrors.KindOf(err))
}

const resistorWithDuplicatePinNumbers = `(kicad_sch
  (version 20231120)
  (generator test)
  (uuid "00000000-0000-0000-0000-000000000001")
  (paper "A4")
  (lib_symbols
    (symbol "Device:Weird"
      (property "Reference" "U" (at 0 0 0))
      (pin passive line (at 0 3.81 90) (length 1.27) (name "~") (number "1"))
      (pin passive line (at 0 -3.81 270) (length 1.27) (name "~") (number "1"))
    )
  )
  (symbol
    (lib_id "Device:Weird")
    (at 10 10 0)
    (uuid "00000000-0000-0000-0000-000000000002")
    (property "Reference" "U1" (at 10 10 0))
  )
)
`

func TestResolveAmbiguousPinIdentifierIsAmbiguousReference(t *testing.T) {
	path := writeSchematic(t, resistorWithDuplicatePinNumbers)
	loc := New()
	_, err := loc.Resolve(path, "U1", "1")
	require.Error(t, err)
	assert.Equal(t, kerrors.AmbiguousReference, kerrors.KindOf(err))
}

func TestResolveCacheInvalidatesOnModTimeChange(t *testing.T) {
	path := writeSchematic(t, resistorWithTemplate)
	loc := New()

	p1, err := loc.Resolve(path, "R1", "1")
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 10, Y: 15}, p1)

	root, err := schematic.Load(path)
	require.NoError(t, err)
	instances := schematic.PlacedInstances(root)
	require.Len(t, instances, 1)
	at, ok := sx.FindFirst(instances[0], "at")
	require.True(t, ok)
	at.Children = []*sx.Node{sx.Sym("at"), sx.Int(20), sx.Int(10), sx.Int(0)}

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, schematic.Save(path, root))
	require.NoError(t, os.Chtimes(path, future, future))

	p2, err := loc.Resolve(path, "R1", "1")
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 20, Y: 15}, p2)
}

// TestResolvePointRotatesCCWInDocumentFrame locks down the rotation
// convention decided in DESIGN.md: a 90-degree instance rotation carries
// a pin attached straight up (local +Y) to local -X, matching KiCad's own
// in-frame pin placement math rather than a screen-space CCW rotation.
func TestResolvePointRotatesCCWInDocumentFrame(t *testing.T) {
	pin := schematic.PinDef{Number: "1", Local: geom.Point{X: 0, Y: 0}, Angle: 90, Length: 1}
	p := ResolvePoint(pin, 0, 0, 90)
	assert.InDelta(t, -1, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}
