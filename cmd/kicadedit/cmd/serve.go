package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the line-delimited JSON command loop over stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDispatcher()
		return d.Serve(context.Background(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
