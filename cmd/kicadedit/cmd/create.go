package cmd

import "github.com/spf13/cobra"

var createPaper string

var createSchematicCmd = &cobra.Command{
	Use:   "create-schematic <schematic_file>",
	Short: "Create a brand-new empty schematic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("create_schematic", map[string]interface{}{"path": args[0], "paper": createPaper})
	},
}

var createBoardCmd = &cobra.Command{
	Use:   "create-board <board_file>",
	Short: "Create a brand-new empty board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("create_board", map[string]interface{}{"path": args[0]})
	},
}

var exportOutputPath string

var exportCmd = &cobra.Command{
	Use:   "export <document_file>",
	Short: "Drive the external check tool's export mode (EXTERNAL_CHECK_TOOL)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("export", map[string]interface{}{"path": args[0], "output_path": exportOutputPath})
	},
}

func init() {
	rootCmd.AddCommand(createSchematicCmd, createBoardCmd, exportCmd)
	createSchematicCmd.Flags().StringVar(&createPaper, "paper", "A4", "paper size")
	exportCmd.Flags().StringVar(&exportOutputPath, "output", "", "output file path")
}
