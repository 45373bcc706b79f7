package nets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/pins"
)

// Two resistors wired pin-to-pin, with a "VCC" label sitting on the wire
// between them.
const netSchematic = `(kicad_sch
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
  (symbol (lib_id "Device:R") (at 0 20 0) (uuid "00000000-0000-0000-0000-000000000003")
    (property "Reference" "R2" (at 0 20 0)))
  (wire (pts (xy 0 5) (xy 0 14.92)) (stroke (width 0) (type default)) (uuid "00000000-0000-0000-0000-000000000004"))
  (label "VCC" (at 0 5 0) (uuid "00000000-0000-0000-0000-000000000005"))
)
`

func newNetSchematic(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.kicad_sch")
	require.NoError(t, os.WriteFile(path, []byte(netSchematic), 0o644))
	return path
}

func TestGetNetConnectionsFindsBothPins(t *testing.T) {
	path := newNetSchematic(t)
	tracer := New(pins.New())

	conns, err := tracer.GetNetConnections(path, "VCC", false)
	require.NoError(t, err)
	assert.Equal(t, []PinConnection{
		{Reference: "R1", Pin: "1"},
		{Reference: "R2", Pin: "2"},
	}, conns)
}

func TestGetNetConnectionsUnknownLabel(t *testing.T) {
	path := newNetSchematic(t)
	tracer := New(pins.New())
	conns, err := tracer.GetNetConnections(path, "GND", false)
	require.NoError(t, err)
	assert.Empty(t, conns)
}
