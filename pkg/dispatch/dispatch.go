// Package dispatch implements the line-delimited JSON command loop
// spec.md §6 describes: one JSON object per line on stdin, one JSON
// object per line of response on stdout, each line fully independent.
// This is the thin in-process command table; the external tool-call
// bridge that frames these requests is out of this system's scope.
package dispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mixelpixx/kicad-mcp-server/pkg/board"
	"github.com/mixelpixx/kicad-mcp-server/pkg/boardops"
	"github.com/mixelpixx/kicad-mcp-server/pkg/checkrunner"
	"github.com/mixelpixx/kicad-mcp-server/pkg/components"
	"github.com/mixelpixx/kicad-mcp-server/pkg/config"
	"github.com/mixelpixx/kicad-mcp-server/pkg/geom"
	"github.com/mixelpixx/kicad-mcp-server/pkg/injector"
	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/libindex"
	"github.com/mixelpixx/kicad-mcp-server/pkg/logx"
	"github.com/mixelpixx/kicad-mcp-server/pkg/nets"
	"github.com/mixelpixx/kicad-mcp-server/pkg/pins"
	"github.com/mixelpixx/kicad-mcp-server/pkg/schematic"
	"github.com/mixelpixx/kicad-mcp-server/pkg/wires"
)

// Request is one decoded line of input. Params holds the command's own
// fields, deliberately untyped since each command interprets them
// differently; see the get*/getFloat helpers below.
type Request struct {
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params"`
}

// Response is one encoded line of output. Result is omitted on failure;
// Error is omitted on success.
type Response struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the structured failure shape every *kerrors.Error
// collapses to at the transport boundary.
type ErrorBody struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Dispatcher owns every engine component needed to serve the command
// table and routes one Request at a time to the right one.
type Dispatcher struct {
	Symbols    *libindex.Index
	Footprints *libindex.Index
	Injector   *injector.Injector
	Components *components.Editor
	Pins       *pins.Locator
	Wires      *wires.Manager
	Nets       *nets.Tracer
	Board      *boardops.Shim
	Check      *checkrunner.Runner
}

// New wires up a Dispatcher from a loaded configuration, the way
// cmd/kicadedit's main does at startup.
func New(cfg *config.Config) *Dispatcher {
	symbols := libindex.NewSymbolIndex(cfg.SymbolLibraryDirs)
	footprints := libindex.NewFootprintIndex(cfg.FootprintLibraryDirs)
	inj := injector.New(symbols)
	locator := pins.New()

	return &Dispatcher{
		Symbols:    symbols,
		Footprints: footprints,
		Injector:   inj,
		Components: components.New(inj),
		Pins:       locator,
		Wires:      wires.New(locator),
		Nets:       nets.New(locator),
		Board:      boardops.New(footprints),
		Check:      checkrunner.New(cfg.ExternalCheckTool),
	}
}

// Dispatch executes one request and always returns a Response, never an
// error: every failure is folded into Response.Error so the transport
// loop can always emit exactly one JSON line per request.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	result, err := d.run(ctx, req)
	if err != nil {
		logx.L().WithFields(map[string]interface{}{"command": req.Command, "error": err}).Warn("command failed")
		return Response{Success: false, Error: toErrorBody(err)}
	}
	return Response{Success: true, Result: result}
}

func toErrorBody(err error) *ErrorBody {
	body := &ErrorBody{Kind: string(kerrors.KindOf(err)), Message: err.Error()}
	var ke *kerrors.Error
	if e, ok := err.(*kerrors.Error); ok {
		ke = e
	}
	if ke != nil {
		body.Suggestion = ke.Suggestion
	}
	return body
}

func (d *Dispatcher) run(ctx context.Context, req Request) (interface{}, error) {
	p := params(req.Params)

	switch req.Command {
	case "create_schematic":
		return d.createSchematic(p)
	case "create_board":
		return d.createBoard(p)
	case "place_symbol":
		return d.placeSymbol(p)
	case "delete_symbol":
		return d.deleteSymbol(p)
	case "edit_symbol":
		return d.editSymbol(p)
	case "get_components":
		return d.getComponents(p)
	case "place_component":
		return d.placeComponent(p)
	case "delete_component":
		return d.deleteComponent(p)
	case "move_component":
		return d.moveComponent(p)
	case "add_wire":
		return d.addWire(p)
	case "add_connection":
		return d.addConnection(p)
	case "add_label":
		return d.addLabel(p)
	case "get_net_connections":
		return d.getNetConnections(p)
	case "add_track":
		return d.addTrack(p)
	case "add_via":
		return d.addVia(p)
	case "delete_tracks":
		return d.deleteTracks(p)
	case "run_check":
		return d.runCheck(ctx, p)
	case "export":
		return d.export(ctx, p)
	default:
		return nil, kerrors.New(kerrors.BadGrammar, "unknown command %q", req.Command)
	}
}

func (d *Dispatcher) createSchematic(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	doc := schematic.NewEmpty(p.getString("paper", "A4"))
	if err := schematic.Save(path, doc); err != nil {
		return nil, err
	}
	return map[string]string{"path": path}, nil
}

func (d *Dispatcher) createBoard(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	if err := board.Save(path, board.NewEmpty()); err != nil {
		return nil, err
	}
	return map[string]string{"path": path}, nil
}

func (d *Dispatcher) placeSymbol(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	placement := components.Placement{
		Library:         p.getString("library", ""),
		Symbol:          p.getString("symbol", ""),
		Reference:       p.getString("reference", ""),
		Value:           p.getString("value", ""),
		Footprint:       p.getString("footprint", ""),
		Datasheet:       p.getString("datasheet", ""),
		Position:        geom.Point{X: p.getFloat("x", 0), Y: p.getFloat("y", 0)},
		RotationDeg:     p.getFloat("rotation", 0),
		ExtraProperties: p.getStringMap("extra_properties"),
	}
	if err := d.Components.PlaceSymbol(path, placement); err != nil {
		return nil, err
	}
	return map[string]string{"reference": placement.Reference}, nil
}

func (d *Dispatcher) deleteSymbol(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	ref, err := p.requireString("reference")
	if err != nil {
		return nil, err
	}
	n, err := d.Components.DeleteByReference(path, ref)
	if err != nil {
		return nil, err
	}
	return map[string]int{"deleted": n}, nil
}

func (d *Dispatcher) editSymbol(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	ref, err := p.requireString("reference")
	if err != nil {
		return nil, err
	}
	props := p.getStringMap("properties")
	if err := d.Components.EditProperties(path, ref, props); err != nil {
		return nil, err
	}
	return map[string]string{"reference": ref}, nil
}

func (d *Dispatcher) getComponents(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	if isBoardPath(path) {
		return d.Board.GetFootprints(path)
	}
	return components.List(path)
}

func isBoardPath(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:] == ".kicad_pcb"
		}
		if path[i] == '/' {
			break
		}
	}
	return false
}

func (d *Dispatcher) placeComponent(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	placement := boardops.Placement{
		Library:         p.getString("library", ""),
		Footprint:       p.getString("footprint", ""),
		Reference:       p.getString("reference", ""),
		Value:           p.getString("value", ""),
		Position:        geom.Point{X: p.getFloat("x", 0), Y: p.getFloat("y", 0)},
		RotationDeg:     p.getFloat("rotation", 0),
		Layer:           p.getString("layer", "F.Cu"),
		ExtraProperties: p.getStringMap("extra_properties"),
	}
	if err := d.Board.PlaceFootprint(path, placement); err != nil {
		return nil, err
	}
	return map[string]string{"reference": placement.Reference}, nil
}

func (d *Dispatcher) deleteComponent(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	ref, err := p.requireString("reference")
	if err != nil {
		return nil, err
	}
	n, err := d.Board.DeleteFootprint(path, ref)
	if err != nil {
		return nil, err
	}
	return map[string]int{"deleted": n}, nil
}

func (d *Dispatcher) moveComponent(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	ref, err := p.requireString("reference")
	if err != nil {
		return nil, err
	}
	pos := geom.Point{X: p.getFloat("x", 0), Y: p.getFloat("y", 0)}
	if err := d.Board.MoveFootprint(path, ref, pos, p.getFloat("rotation", 0)); err != nil {
		return nil, err
	}
	return map[string]string{"reference": ref}, nil
}

func (d *Dispatcher) addWire(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	from := geom.Point{X: p.getFloat("from_x", 0), Y: p.getFloat("from_y", 0)}
	to := geom.Point{X: p.getFloat("to_x", 0), Y: p.getFloat("to_y", 0)}
	if err := d.Wires.AddWire(path, from, to); err != nil {
		return nil, err
	}
	return map[string]bool{"added": true}, nil
}

func (d *Dispatcher) addConnection(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	style := wires.Style(p.getString("style", string(wires.StyleOrthogonalH)))
	err = d.Wires.AddConnection(path,
		p.getString("from_reference", ""), p.getString("from_pin", ""),
		p.getString("to_reference", ""), p.getString("to_pin", ""), style)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"added": true}, nil
}

func (d *Dispatcher) addLabel(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	at := geom.Point{X: p.getFloat("x", 0), Y: p.getFloat("y", 0)}
	text, err := p.requireString("text")
	if err != nil {
		return nil, err
	}
	kind := wires.LabelKind(p.getString("kind", string(wires.LabelLocal)))
	orientation := p.getFloat("orientation", 0)
	if err := d.Wires.AddLabel(path, at, text, kind, orientation); err != nil {
		return nil, err
	}
	return map[string]bool{"added": true}, nil
}

func (d *Dispatcher) getNetConnections(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	name, err := p.requireString("net")
	if err != nil {
		return nil, err
	}
	return d.Nets.GetNetConnections(path, name, p.getBool("nearest_pin_fallback", false))
}

func (d *Dispatcher) addTrack(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	track := boardops.Track{
		From:  geom.Point{X: p.getFloat("from_x", 0), Y: p.getFloat("from_y", 0)},
		To:    geom.Point{X: p.getFloat("to_x", 0), Y: p.getFloat("to_y", 0)},
		Layer: p.getString("layer", "F.Cu"),
		Width: p.getFloat("width", 0.25),
		Net:   p.getInt("net", 0),
	}
	if err := d.Board.AddTrack(path, track); err != nil {
		return nil, err
	}
	return map[string]bool{"added": true}, nil
}

func (d *Dispatcher) addVia(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	via := boardops.Via{
		At:     geom.Point{X: p.getFloat("x", 0), Y: p.getFloat("y", 0)},
		Size:   p.getFloat("size", 0.6),
		Drill:  p.getFloat("drill", 0.3),
		Layers: [2]string{p.getString("layer_from", "F.Cu"), p.getString("layer_to", "B.Cu")},
		Net:    p.getInt("net", 0),
	}
	if err := d.Board.AddVia(path, via); err != nil {
		return nil, err
	}
	return map[string]bool{"added": true}, nil
}

func (d *Dispatcher) deleteTracks(p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	n, err := d.Board.DeleteTracks(path, p.getInt("net", 0))
	if err != nil {
		return nil, err
	}
	return map[string]int{"deleted": n}, nil
}

func (d *Dispatcher) runCheck(ctx context.Context, p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	result, err := d.Check.Run(ctx, path)
	if err != nil {
		return result, err
	}
	return result, nil
}

// export drives the external check tool's export mode (spec.md §4.9: the
// sibling command-line tool "produces reports and exports in binary
// formats"), the same subprocess collaborator run_check uses.
func (d *Dispatcher) export(ctx context.Context, p params) (interface{}, error) {
	path, err := p.requireString("path")
	if err != nil {
		return nil, err
	}
	out, err := p.requireString("output_path")
	if err != nil {
		return nil, err
	}
	result, err := d.Check.Export(ctx, path, out)
	if err != nil {
		return result, err
	}
	return map[string]string{"output_path": out}, nil
}

// Serve runs the line-delimited JSON command loop: one Request per line
// of r, one Response per line written to w. It stops at EOF or a read
// error, never at a single bad line — a malformed line is reported as a
// BadGrammar response and the loop continues.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			resp := Response{Success: false, Error: &ErrorBody{Kind: string(kerrors.BadGrammar), Message: fmt.Sprintf("invalid request: %v", err)}}
			if encErr := enc.Encode(resp); encErr != nil {
				return encErr
			}
			continue
		}

		resp := d.Dispatch(ctx, req)
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
