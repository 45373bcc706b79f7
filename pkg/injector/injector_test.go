package injector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/libindex"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
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

func newTestSchematic(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.kicad_sch")
	require.NoError(t, schematic.Save(path, schematic.NewEmpty("A4")))
	return path
}

func newTestIndex(t *testing.T) *libindex.Index {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Device.kicad_sym"), []byte(resistorLib), 0o644))
	return libindex.NewSymbolIndex([]string{dir})
}

func TestEnsurePresentSplicesDefinitionAndTemplate(t *testing.T) {
	path := newTestSchematic(t)
	inj := New(newTestIndex(t))

	require.NoError(t, inj.EnsurePresent(path, "Device", "R"))

	root, err := schematic.Load(path)
	require.NoError(t, err)

	libSymbols, ok := sx.FindFirst(root, "lib_symbols")
	require.True(t, ok)
	_, ok = schematic.FindSymbolDefinition(libSymbols, "Device:R")
	assert.True(t, ok)

	tmpl, ok := TemplateInstance(root, "Device", "R")
	require.True(t, ok)
	assert.Equal(t, "_TEMPLATE_Device_R", schematic.Reference(tmpl))
	assert.Equal(t, "no", func() string {
		n, _ := sx.FindFirst(tmpl, "in_bom")
		v, _ := sx.StringAt(n, 1)
		return v
	}())
}

func TestEnsurePresentIsIdempotent(t *testing.T) {
	path := newTestSchematic(t)
	inj := New(newTestIndex(t))

	require.NoError(t, inj.EnsurePresent(path, "Device", "R"))
	require.NoError(t, inj.EnsurePresent(path, "Device", "R"))

	root, err := schematic.Load(path)
	require.NoError(t, err)
	assert.Len(t, schematic.PlacedInstances(root), 1)

	libSymbols, _ := sx.FindFirst(root, "lib_symbols")
	assert.Len(t, sx.FindAll(libSymbols, "symbol"), 1)
}
