package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mixelpixx/kicad-mcp-server/pkg/config"
	"github.com/mixelpixx/kicad-mcp-server/pkg/dispatch"
	"github.com/mixelpixx/kicad-mcp-server/pkg/logx"
)

var rootCmd = &cobra.Command{
	Use:   "kicadedit",
	Short: "Programmatic editor for KiCad schematic and board files",
	Long: `kicadedit edits KiCad-style schematic (.kicad_sch) and board
(.kicad_pcb) documents in place, the way an automation bridge drives it:

  kicadedit serve                         # line-delimited JSON command loop
  kicadedit sch place-symbol ...          # place a component on a schematic
  kicadedit pcb place-footprint ...       # place a footprint on a board
  kicadedit check run board.kicad_pcb     # run the external design check`,
	Version: "1.0.0",
}

// Execute runs the root command, exiting 1 on any error per spec.md §6.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newDispatcher loads the process configuration and applies LOG_LEVEL,
// the way every subcommand and the serve loop both need to start. Per
// spec.md §6, a startup failure (no usable symbol or footprint library
// search path) exits 1 before any command is ever dispatched.
func newDispatcher() *dispatch.Dispatcher {
	cfg := config.Load()
	logx.SetLevel(cfg.LogLevel)

	if !config.HasUsableDirs(cfg.SymbolLibraryDirs) {
		fmt.Fprintln(os.Stderr, "kicadedit: no usable symbol library directory found (SYMBOL_LIBRARY_DIRS)")
		os.Exit(1)
	}
	if !config.HasUsableDirs(cfg.FootprintLibraryDirs) {
		fmt.Fprintln(os.Stderr, "kicadedit: no usable footprint library directory found (FOOTPRINT_LIBRARY_DIRS)")
		os.Exit(1)
	}

	return dispatch.New(cfg)
}
