package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show version and setup",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "pdfsm %s\n", version)
		fmt.Fprintln(w, "Builds a PDF from selected pages of other PDFs.")
		fmt.Fprintf(w, "Repair tool: %s", cur.cfg.Repair.Binary)
		if err := cur.gs.Available(); err != nil {
			fmt.Fprint(w, " (not found)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Config file: %s\n", cur.session.ConfigPath())
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}
