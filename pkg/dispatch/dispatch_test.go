package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/config"
)

const resistorLib = `(kicad_symbol_lib (version 20231120) (generator test)
  (symbol "Device:R"
    (property "Reference" "R" (at 0 0 0))
    (property "Value" "R" (at 0 0 0))
    (pin passive line (at 0 3.81 90) (length 1.27) (name "~") (number "1"))
    (pin passive line (at 0 -3.81 270) (length 1.27) (name "~") (number "2"))
  )
)
`

func newDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	libDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "Device.kicad_sym"), []byte(resistorLib), 0o644))

	cfg := &config.Config{SymbolLibraryDirs: []string{libDir}}
	return New(cfg), t.TempDir()
}

// TestScenarioPlaceTwoResistorsAndConnect exercises the literal
// create -> place -> place -> connect -> query path an automation
// bridge would drive for a two-resistor divider.
func TestScenarioPlaceTwoResistorsAndConnect(t *testing.T) {
	d, dir := newDispatcher(t)
	path := filepath.Join(dir, "divider.kicad_sch")
	ctx := context.Background()

	resp := d.Dispatch(ctx, Request{Command: "create_schematic", Params: map[string]interface{}{"path": path}})
	require.True(t, resp.Success)

	resp = d.Dispatch(ctx, Request{Command: "place_symbol", Params: map[string]interface{}{
		"path": path, "library": "Device", "symbol": "R", "reference": "R1", "value": "10k", "x": 0.0, "y": 0.0,
	}})
	require.True(t, resp.Success, "%+v", resp.Error)

	resp = d.Dispatch(ctx, Request{Command: "place_symbol", Params: map[string]interface{}{
		"path": path, "library": "Device", "symbol": "R", "reference": "R2", "value": "10k", "x": 0.0, "y": 20.0,
	}})
	require.True(t, resp.Success, "%+v", resp.Error)

	resp = d.Dispatch(ctx, Request{Command: "add_connection", Params: map[string]interface{}{
		"path": path, "from_reference": "R1", "from_pin": "1", "to_reference": "R2", "to_pin": "2", "style": "direct",
	}})
	require.True(t, resp.Success, "%+v", resp.Error)

	resp = d.Dispatch(ctx, Request{Command: "get_components", Params: map[string]interface{}{"path": path}})
	require.True(t, resp.Success)

	resp = d.Dispatch(ctx, Request{Command: "add_label", Params: map[string]interface{}{
		"path": path, "x": 0.0, "y": 0.0, "text": "VCC", "kind": "global",
	}})
	require.True(t, resp.Success, "%+v", resp.Error)
}

func TestDispatchExportRoutesThroughCheckTool(t *testing.T) {
	d, dir := newDispatcher(t)
	path := filepath.Join(dir, "divider.kicad_sch")
	ctx := context.Background()

	resp := d.Dispatch(ctx, Request{Command: "create_schematic", Params: map[string]interface{}{"path": path}})
	require.True(t, resp.Success)

	// No EXTERNAL_CHECK_TOOL configured in this test's Config, so export
	// must fail the same way run_check does rather than silently
	// succeeding by re-serializing the file itself.
	resp = d.Dispatch(ctx, Request{Command: "export", Params: map[string]interface{}{
		"path": path, "output_path": filepath.Join(dir, "out.bin"),
	}})
	require.False(t, resp.Success)
	assert.Equal(t, "CheckFailed", resp.Error.Kind)
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, _ := newDispatcher(t)
	resp := d.Dispatch(context.Background(), Request{Command: "frobnicate"})
	assert.False(t, resp.Success)
	assert.Equal(t, "BadGrammar", resp.Error.Kind)
}

func TestDispatchMissingRequiredParam(t *testing.T) {
	d, _ := newDispatcher(t)
	resp := d.Dispatch(context.Background(), Request{Command: "create_schematic", Params: map[string]interface{}{}})
	assert.False(t, resp.Success)
	assert.Equal(t, "BadGrammar", resp.Error.Kind)
}

func TestServeHandlesLineDelimitedJSON(t *testing.T) {
	d, dir := newDispatcher(t)
	path := filepath.Join(dir, "test.kicad_sch")

	input := `{"command":"create_schematic","params":{"path":"` + path + `"}}` + "\n" +
		`not json at all` + "\n"
	var out bytes.Buffer

	require.NoError(t, d.Serve(context.Background(), bytes.NewBufferString(input), &out))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first Response
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.True(t, first.Success)

	var second Response
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.False(t, second.Success)
}
