package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the remembered paths",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		p := cur.session.Saved()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Config file: %s\n", cur.session.ConfigPath())
		fmt.Fprintf(w, "Select file: %s\n", p.SelectFile)
		fmt.Fprintf(w, "Input path:  %s\n", p.InputPath)
		fmt.Fprintf(w, "Save file:   %s\n", p.SaveFile)
		if !p.Ready() {
			fmt.Fprintln(w, "Merge needs all three paths.")
		}
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
