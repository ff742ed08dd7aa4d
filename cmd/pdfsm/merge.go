package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/local/pdfsm/internal/merge"
	"github.com/local/pdfsm/internal/session"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Run a merge",
	Long: `Run a merge using the selector file, input directory and output file.

Paths not given as flags are taken from the last run.

Examples:
  pdfsm merge -s monthly.ini -i ./scans -o report.pdf
  pdfsm merge -i s3://bucket/scans/
  pdfsm merge`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringP("select", "s", "", "selector INI file")
	mergeCmd.Flags().StringP("input", "i", "", "input directory, s3:// or http(s):// location")
	mergeCmd.Flags().StringP("output", "o", "", "output PDF file")
}

func runMerge(cmd *cobra.Command, _ []string) error {
	sel, _ := cmd.Flags().GetString("select")
	in, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("output")

	paths := cur.session.Resolve(session.Paths{SelectFile: sel, InputPath: in, SaveFile: out})
	if !paths.Ready() {
		return fmt.Errorf("%w (see pdfsm paths)", merge.ErrIncompleteRun)
	}
	if tip := cur.session.Remember(paths); tip != "" {
		fmt.Fprintln(cmd.OutOrStdout(), tip)
	}

	w := cmd.OutOrStdout()
	res, err := cur.merger.Merge(cmd.Context(), merge.Run{
		SelectorFile: paths.SelectFile,
		InputDir:     paths.InputPath,
		OutputFile:   paths.SaveFile,
		OnLog:        func(line string) { fmt.Fprintln(w, line) },
	})
	if err != nil {
		return err
	}
	if res.Status == merge.StatusFailed {
		return errors.New("nothing was saved")
	}
	return nil
}
