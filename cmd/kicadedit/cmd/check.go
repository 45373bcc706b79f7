package cmd

import "github.com/spf13/cobra"

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "External design-rule check operations",
}

var checkRunCmd = &cobra.Command{
	Use:   "run <document_file>",
	Short: "Run the configured external check tool (EXTERNAL_CHECK_TOOL) against a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint("run_check", map[string]interface{}{"path": args[0]})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkRunCmd)
}
