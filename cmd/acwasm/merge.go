package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm/pkg/store"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge multiple results databases",
	Long: `Merge several results databases into one, for example from scans of
different targets with the same pattern set.

Duplicate sources and hits are only stored once in the merged database.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Merge complete:\n")
	fmt.Fprintf(out, "  Databases processed: %d\n", stats.DatabasesMerged)
	fmt.Fprintf(out, "  Sources merged: %d\n", stats.SourcesMerged)
	fmt.Fprintf(out, "  Hits merged: %d\n", stats.HitsMerged)
	fmt.Fprintf(out, "Output: %s\n", mergeOutput)
	return nil
}
