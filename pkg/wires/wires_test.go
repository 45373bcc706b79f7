package wires

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/pins"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

const twoResistors = `(kicad_sch
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
  (symbol (lib_id "Device:R") (at 0 0 0) (uuid "00000000-0000-0000-0000-000000000002")
    (property "Reference" "R1" (at 0 0 0)))
  (symbol (lib_id "Device:R") (at 20 10 0) (uuid "00000000-0000-0000-0000-000000000003")
    (property "Reference" "R2" (at 20 10 0)))
)
`

func newSchematic(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.kicad_sch")
	require.NoError(t, os.WriteFile(path, []byte(twoResistors), 0o644))
	return path
}

func TestAddWireAppendsSegment(t *testing.T) {
	path := newSchematic(t)
	m := New(pins.New())

	require.NoError(t, m.AddWire(path, geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0}))

	root, err := schematic.Load(path)
	require.NoError(t, err)
	assert.Len(t, sx.FindAll(root, "wire"), 1)
}

func TestAddConnectionSameAxisIsOneSegment(t *testing.T) {
	path := newSchematic(t)
	m := New(pins.New())

	require.NoError(t, m.AddConnection(path, "R1", "1", "R1", "2", StyleDirect))

	root, err := schematic.Load(path)
	require.NoError(t, err)
	assert.Len(t, sx.FindAll(root, "wire"), 1)
}

func TestAddConnectionOrthogonalIsTwoSegments(t *testing.T) {
	path := newSchematic(t)
	m := New(pins.New())

	require.NoError(t, m.AddConnection(path, "R1", "1", "R2", "1", StyleOrthogonalH))

	root, err := schematic.Load(path)
	require.NoError(t, err)
	assert.Len(t, sx.FindAll(root, "wire"), 2)
}

func TestAddLabelRejectsEmptyText(t *testing.T) {
	path := newSchematic(t)
	m := New(pins.New())
	err := m.AddLabel(path, geom.Point{X: 0, Y: 0}, "", LabelLocal, 0)
	assert.Error(t, err)
}

func TestAddLabelWritesText(t *testing.T) {
	path := newSchematic(t)
	m := New(pins.New())
	require.NoError(t, m.AddLabel(path, geom.Point{X: 5, Y: 5}, "VCC", LabelLocal, 0))

	root, err := schematic.Load(path)
	require.NoError(t, err)
	labels := sx.FindAll(root, "label")
	require.Len(t, labels, 1)
	text, _ := sx.StringAt(labels[0], 1)
	assert.Equal(t, "VCC", text)
}

func TestAddLabelWritesGlobalKindAndOrientation(t *testing.T) {
	path := newSchematic(t)
	m := New(pins.New())
	require.NoError(t, m.AddLabel(path, geom.Point{X: 5, Y: 5}, "GND", LabelGlobal, 90))

	root, err := schematic.Load(path)
	require.NoError(t, err)
	assert.Len(t, sx.FindAll(root, "label"), 0)
	globals := sx.FindAll(root, "global_label")
	require.Len(t, globals, 1)
	text, _ := sx.StringAt(globals[0], 1)
	assert.Equal(t, "GND", text)
	at, ok := sx.FindFirst(globals[0], "at")
	require.True(t, ok)
	angle, _ := sx.FloatAt(at, 3)
	assert.Equal(t, 90.0, angle)
}
