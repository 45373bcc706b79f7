package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mixelpixx/kicad-mcp-server/pkg/dispatch"
)

var schCmd = &cobra.Command{
	Use:   "sch",
	Short: "Schematic (.kicad_sch) operations",
}

var (
	schLibrary, schSymbol, schReference, schValue, schFootprint, schDatasheet string
	schX, schY, schRotation                                                   float64
)

var schPlaceSymbolCmd = &cobra.Command{
	Use:   "place-symbol <schematic_file>",
	Short: "Place a component onto a schematic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("place_symbol", map[string]interface{}{
			"path": args[0], "library": schLibrary, "symbol": schSymbol,
			"reference": schReference, "value": schValue, "footprint": schFootprint,
			"datasheet": schDatasheet, "x": schX, "y": schY, "rotation": schRotation,
		})
	},
}

var schDeleteSymbolCmd = &cobra.Command{
	Use:   "delete-symbol <schematic_file>",
	Short: "Delete every component matching a reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("delete_symbol", map[string]interface{}{"path": args[0], "reference": schReference})
	},
}

var schEditSymbolCmd = &cobra.Command{
	Use:   "edit-symbol <schematic_file>",
	Short: "Edit properties of a single component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props := map[string]interface{}{}
		if schValue != "" {
			props["Value"] = schValue
		}
		if schFootprint != "" {
			props["Footprint"] = schFootprint
		}
		return runAndPrint("edit_symbol", map[string]interface{}{
			"path": args[0], "reference": schReference, "properties": props,
		})
	},
}

var schGetComponentsCmd = &cobra.Command{
	Use:   "get-components <schematic_file>",
	Short: "List every placed component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("get_components", map[string]interface{}{"path": args[0]})
	},
}

func init() {
	rootCmd.AddCommand(schCmd)
	schCmd.AddCommand(schPlaceSymbolCmd, schDeleteSymbolCmd, schEditSymbolCmd, schGetComponentsCmd)

	for _, c := range []*cobra.Command{schPlaceSymbolCmd, schDeleteSymbolCmd, schEditSymbolCmd} {
		c.Flags().StringVar(&schReference, "reference", "", "component reference designator")
	}
	schPlaceSymbolCmd.Flags().StringVar(&schLibrary, "library", "", "symbol library name")
	schPlaceSymbolCmd.Flags().StringVar(&schSymbol, "symbol", "", "symbol name within the library")
	schPlaceSymbolCmd.Flags().Float64Var(&schX, "x", 0, "X position")
	schPlaceSymbolCmd.Flags().Float64Var(&schY, "y", 0, "Y position")
	schPlaceSymbolCmd.Flags().Float64Var(&schRotation, "rotation", 0, "rotation in degrees")
	schPlaceSymbolCmd.Flags().StringVar(&schDatasheet, "datasheet", "", "datasheet URL")
	for _, c := range []*cobra.Command{schPlaceSymbolCmd, schEditSymbolCmd} {
		c.Flags().StringVar(&schValue, "value", "", "component value")
		c.Flags().StringVar(&schFootprint, "footprint", "", "footprint lib_id")
	}
}

// runAndPrint dispatches one command against the process's configured
// engine and prints its JSON result, exiting non-zero on failure the way
// spec.md §6 describes for the CLI surface.
func runAndPrint(command string, params map[string]interface{}) error {
	d := newDispatcher()
	resp := d.Dispatch(context.Background(), dispatch.Request{Command: command, Params: params})
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if !resp.Success {
		_ = enc.Encode(resp)
		return fmt.Errorf("%s: %s", resp.Error.Kind, resp.Error.Message)
	}
	return enc.Encode(resp)
}
