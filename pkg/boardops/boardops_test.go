package boardops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/board"
	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/libindex"
)

const resistorFootprint = `(footprint "R_0603_1608Metric" (layer "F.Cu")
  (property "Reference" "REF**" (at 0 0 0))
  (pad "1" smd rect (at -0.75 0) (size 0.8 0.95) (layers "F.Cu" "F.Paste" "F.Mask"))
  (pad "2" smd rect (at 0.75 0) (size 0.8 0.95) (layers "F.Cu" "F.Paste" "F.Mask"))
)
`

func newShim(t *testing.T) (*Shim, string) {
	t.Helper()
	libDir := t.TempDir()
	prettyDir := filepath.Join(libDir, "Resistor_SMD.pretty")
	require.NoError(t, os.Mkdir(prettyDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prettyDir, "R_0603_1608Metric.kicad_mod"), []byte(resistorFootprint), 0o644))
	ix := libindex.NewFootprintIndex([]string{libDir})
	shim := New(ix)

	boardDir := t.TempDir()
	path := filepath.Join(boardDir, "test.kicad_pcb")
	require.NoError(t, board.Save(path, board.NewEmpty()))
	return shim, path
}

func TestPlaceFootprintSetsIdentity(t *testing.T) {
	shim, path := newShim(t)
	err := shim.PlaceFootprint(path, Placement{
		Library: "Resistor_SMD", Footprint: "R_0603_1608Metric", Reference: "R1", Value: "10k",
		Position: geom.Point{X: 10, Y: 10}, Layer: "F.Cu",
	})
	require.NoError(t, err)

	list, err := shim.GetFootprints(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "R1", list[0].Reference)
	assert.Equal(t, "10k", list[0].Value)
}

func TestMoveAndDeleteFootprint(t *testing.T) {
	shim, path := newShim(t)
	require.NoError(t, shim.PlaceFootprint(path, Placement{
		Library: "Resistor_SMD", Footprint: "R_0603_1608Metric", Reference: "R1", Value: "10k",
		Position: geom.Point{X: 0, Y: 0},
	}))

	require.NoError(t, shim.MoveFootprint(path, "R1", geom.Point{X: 20, Y: 30}, 90))
	list, err := shim.GetFootprints(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, geom.Point{X: 20, Y: 30}, list[0].Position)

	n, err := shim.DeleteFootprint(path, "R1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err = shim.GetFootprints(path)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteFootprintMissingIsInstanceNotFound(t *testing.T) {
	shim, path := newShim(t)
	_, err := shim.DeleteFootprint(path, "R99")
	require.Error(t, err)
	assert.Equal(t, kerrors.InstanceNotFound, kerrors.KindOf(err))
}

func TestAddTrackAndDeleteTracksByNet(t *testing.T) {
	shim, path := newShim(t)
	require.NoError(t, shim.AddTrack(path, Track{From: geom.Point{X: 0, Y: 0}, To: geom.Point{X: 10, Y: 0}, Layer: "F.Cu", Width: 0.25, Net: 1}))
	require.NoError(t, shim.AddTrack(path, Track{From: geom.Point{X: 0, Y: 5}, To: geom.Point{X: 10, Y: 5}, Layer: "F.Cu", Width: 0.25, Net: 2}))

	n, err := shim.DeleteTracks(path, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	root, err := board.Load(path)
	require.NoError(t, err)
	assert.Len(t, board.Tracks(root), 1)
}

func TestAddVia(t *testing.T) {
	shim, path := newShim(t)
	require.NoError(t, shim.AddVia(path, Via{At: geom.Point{X: 5, Y: 5}, Size: 0.6, Drill: 0.3, Layers: [2]string{"F.Cu", "B.Cu"}, Net: 1}))

	root, err := board.Load(path)
	require.NoError(t, err)
	assert.Len(t, board.Vias(root), 1)
}
