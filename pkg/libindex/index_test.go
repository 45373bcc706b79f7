package libindex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
)

const deviceLib = `(kicad_symbol_lib (version 20231120) (generator test)
  (symbol "Device:R"
    (property "Reference" "R" (at 0 0 0))
    (symbol "Device:R_0_1"
      (pin passive line (at 0 5.08 270) (length 1.27) (name "~") (number "1"))
      (pin passive line (at 0 -5.08 90) (length 1.27) (name "~") (number "2"))
    )
  )
  (symbol "Device:R_Small"
    (property "Reference" "R" (at 0 0 0))
  )
)
`

func writeLib(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLocateAndExtractDefinition(t *testing.T) {
	dir := t.TempDir()
	writeLib(t, dir, "Device.kicad_sym", deviceLib)

	ix := NewSymbolIndex([]string{dir})
	path, err := ix.Locate("Device", "R")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Device.kicad_sym"), path)

	def, err := ix.ExtractDefinition("Device", "R")
	require.NoError(t, err)
	assert.Equal(t, "symbol", def.Tag())
}

func TestLocateMissingSymbolSuggestsClosestMatch(t *testing.T) {
	dir := t.TempDir()
	writeLib(t, dir, "Device.kicad_sym", deviceLib)

	ix := NewSymbolIndex([]string{dir})
	_, err := ix.Locate("Device", "R_Smal")
	require.Error(t, err)

	var kerr *kerrors.Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, kerrors.SymbolNotFound, kerr.Kind)
	assert.Equal(t, "R_Small", kerr.Suggestion)
}

func TestSearchByNameIsCaseInsensitiveSubstring(t *testing.T) {
	dir := t.TempDir()
	writeLib(t, dir, "Device.kicad_sym", deviceLib)

	ix := NewSymbolIndex([]string{dir})
	matches := ix.SearchByName("small", "")
	assert.Equal(t, []string{"Device:R_Small"}, matches)
}

func TestParseCacheInvalidatesOnModTimeChange(t *testing.T) {
	dir := t.TempDir()
	path := writeLib(t, dir, "Device.kicad_sym", deviceLib)

	ix := NewSymbolIndex([]string{dir})
	_, err := ix.Locate("Device", "R")
	require.NoError(t, err)
	require.Contains(t, ix.cache, path)
	firstTree := ix.cache[path].tree

	// Rewrite without the R symbol; bump mtime forward so the cache notices.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte(`(kicad_symbol_lib (symbol "Device:C"))`), 0o644))
	require.NoError(t, os.Chtimes(path, future, future))

	_, err = ix.Locate("Device", "C")
	require.NoError(t, err)
	assert.NotSame(t, firstTree, ix.cache[path].tree)
}

func TestFootprintIndexOneDefinitionPerFile(t *testing.T) {
	dir := t.TempDir()
	libDir := filepath.Join(dir, "Resistor_SMD.pretty")
	require.NoError(t, os.Mkdir(libDir, 0o755))
	writeLib(t, libDir, "R_0603_1608Metric.kicad_mod", `(footprint "R_0603_1608Metric" (layer "F.Cu"))`)

	ix := NewFootprintIndex([]string{dir})
	path, err := ix.Locate("Resistor_SMD", "R_0603_1608Metric")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(libDir, "R_0603_1608Metric.kicad_mod"), path)

	def, err := ix.ExtractDefinition("Resistor_SMD", "R_0603_1608Metric")
	require.NoError(t, err)
	assert.Equal(t, "footprint", def.Tag())
}
