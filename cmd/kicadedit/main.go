// Command kicadedit is the CLI entry point for the schematic/board edit
// engine: it either drives the JSON command loop over stdin/stdout
// (the "serve" subcommand, spec.md §6's transport) or runs one command
// directly for manual/dev use, in the style of the teacher's otj CLI.
package main

import "github.com/mixelpixx/kicad-mcp-server/cmd/kicadedit/cmd"

func main() {
	cmd.Execute()
}
