package components

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/injector"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/libindex"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
)

const resistorLib = `(kicad_symbol_lib (version 20231120) (generator test)
  (symbol "Device:R"
    (property "Reference" "R" (at 0 0 0))
    (property "Value" "R" (at 0 0 0))
    (pin passive line (at 0 5.08 270) (length 1.27) (name "~") (number "1"))
    (pin passive line (at 0 -5.08 90) (length 1.27) (name "~") (number "2"))
  )
)
`

func newEditor(t *testing.T) (*Editor, string) {
	t.Helper()
	libDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "Device.kicad_sym"), []byte(resistorLib), 0o644))
	ix := libindex.NewSymbolIndex([]string{libDir})
	editor := New(injector.New(ix))

	schDir := t.TempDir()
	path := filepath.Join(schDir, "test.kicad_sch")
	require.NoError(t, schematic.Save(path, schematic.NewEmpty("A4")))
	return editor, path
}

func TestPlaceSymbolSetsIdentityAndGeometry(t *testing.T) {
	editor, path := newEditor(t)

	err := editor.PlaceSymbol(path, Placement{
		Library: "Device", Symbol: "R", Reference: "R1", Value: "10k",
		Footprint: "Resistor_SMD:R_0603_1608Metric", Datasheet: "",
		Position: geom.Point{X: 12.7, Y: 25.4}, RotationDeg: 90,
	})
	require.NoError(t, err)

	list, err := List(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "R1", list[0].Reference)
	assert.Equal(t, "10k", list[0].Value)
	assert.Equal(t, "Resistor_SMD:R_0603_1608Metric", list[0].Footprint)
	assert.Equal(t, geom.Point{X: 12.5, Y: 25.5}, list[0].Position)
}

func TestPlaceSymbolDoesNotDropEmptyFootprint(t *testing.T) {
	editor, path := newEditor(t)

	require.NoError(t, editor.PlaceSymbol(path, Placement{
		Library: "Device", Symbol: "R", Reference: "R1", Value: "10k",
		Footprint: "", Position: geom.Point{X: 0, Y: 0},
	}))

	list, err := List(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "", list[0].Footprint)
}

func TestDeleteByReferenceRemovesAllMatches(t *testing.T) {
	editor, path := newEditor(t)
	require.NoError(t, editor.PlaceSymbol(path, Placement{Library: "Device", Symbol: "R", Reference: "R1", Value: "1k"}))
	require.NoError(t, editor.PlaceSymbol(path, Placement{Library: "Device", Symbol: "R", Reference: "R1", Value: "2k"}))
	require.NoError(t, editor.PlaceSymbol(path, Placement{Library: "Device", Symbol: "R", Reference: "R2", Value: "3k"}))

	n, err := editor.DeleteByReference(path, "R1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := List(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "R2", list[0].Reference)
}

func TestDeleteByReferenceMissingIsInstanceNotFound(t *testing.T) {
	editor, path := newEditor(t)
	_, err := editor.DeleteByReference(path, "R99")
	require.Error(t, err)
	assert.Equal(t, kerrors.InstanceNotFound, kerrors.KindOf(err))
}

func TestEditPropertiesAmbiguousReference(t *testing.T) {
	editor, path := newEditor(t)
	require.NoError(t, editor.PlaceSymbol(path, Placement{Library: "Device", Symbol: "R", Reference: "R1", Value: "1k"}))
	require.NoError(t, editor.PlaceSymbol(path, Placement{Library: "Device", Symbol: "R", Reference: "R1", Value: "2k"}))

	err := editor.EditProperties(path, "R1", map[string]string{"Value": "5k"})
	require.Error(t, err)
	assert.Equal(t, kerrors.AmbiguousReference, kerrors.KindOf(err))
}

func TestEditPropertiesAppliesExtraProperties(t *testing.T) {
	editor, path := newEditor(t)
	require.NoError(t, editor.PlaceSymbol(path, Placement{Library: "Device", Symbol: "R", Reference: "R1", Value: "1k"}))

	err := editor.EditProperties(path, "R1", map[string]string{"Tolerance": "1%"})
	require.NoError(t, err)

	root, err := schematic.Load(path)
	require.NoError(t, err)
	instances := schematic.PlacedInstances(root)
	require.Len(t, instances, 1)
	v, _, ok := schematic.Property(instances[0], "Tolerance")
	require.True(t, ok)
	assert.Equal(t, "1%", v)
}
