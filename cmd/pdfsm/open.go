package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/local/pdfsm/internal/opener"
)

var openCmd = &cobra.Command{
	Use:   "open [file]",
	Short: "Open the resulting file with the default viewer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cur.session.Saved().SaveFile
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no output file configured")
		}
		if err := opener.Open(path); err != nil {
			if errors.Is(err, opener.ErrRemoved) {
				return errors.New("File has been removed.")
			}
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
