// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rowdoc/internal/convert"
	"github.com/pdiddy/rowdoc/pkg/types"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest <path>",
	Short: "Summarize a run manifest written with --manifest",
	Long: `Manifest reads a YAML run manifest and prints its counts followed by
every row that failed or had fields replaced by defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: runManifest,
}

func runManifest(cmd *cobra.Command, args []string) error {
	m, err := convert.ReadManifest(args[0])
	if err != nil {
		return err
	}
	formatManifest(cmd.OutOrStdout(), m)
	return nil
}

func formatManifest(w io.Writer, m convert.Manifest) {
	fmt.Fprintf(w, "Run %s at %s\n", m.RunID, m.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Input: %s\nOutput directory: %s\n", m.Input, m.OutputDir)
	fmt.Fprintf(w, "%d written, %d skipped, %d failed, %d degraded\n",
		m.Written, m.Skipped, m.Failed, m.Degraded)

	for _, row := range m.Rows {
		switch {
		case row.Status == types.RowFailed:
			fmt.Fprintf(w, "  row %d failed: %s\n", row.RowIndex, row.Error)
		case len(row.Degraded) > 0:
			for _, d := range row.Degraded {
				fmt.Fprintf(w, "  row %d %s: %s defaulted (%s)\n", row.RowIndex, row.ID, d.Field, d.Reason)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
