package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm/pkg/datastore"
	"github.com/praetorian-inc/acwasm/pkg/enum"
	"github.com/praetorian-inc/acwasm/pkg/scanner"
	"github.com/praetorian-inc/acwasm/pkg/store"
)

var (
	scanSet           setFlags
	scanOutputPath    string
	scanOutputFormat  string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanContext       int
	scanReaders       int
	scanBlobsDir      string
)

var scanCmd = &cobra.Command{
	Use:   "scan <target> [target...]",
	Short: "Scan files and directories for patterns",
	Long: `Walk files and directories, search every text file for the patterns of a
pattern set, and store the hits in a results database. Identical content
found under several paths is searched once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanSet.register(scanCmd)
	scanCmd.Flags().StringVarP(&scanOutputPath, "output", "o", "acwasm.db", "Results database path (':memory:' to keep nothing)")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: human, json, sarif")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to scan (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().IntVar(&scanContext, "context", scanner.DefaultSnippetContext, "Bytes of context kept around each hit")
	scanCmd.Flags().IntVar(&scanReaders, "readers", 0, "Parallel file readers (0 = one per CPU)")
	scanCmd.Flags().StringVar(&scanBlobsDir, "store-blobs", "", "Directory to keep a copy of every file with hits")
}

func runScan(cmd *cobra.Command, args []string) error {
	for _, target := range args {
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("target does not exist: %s", target)
		}
	}
	if scanOutputFormat != "human" && scanOutputFormat != "json" && scanOutputFormat != "sarif" {
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}

	set, err := scanSet.load()
	if err != nil {
		return fmt.Errorf("loading patterns: %w", err)
	}
	options, err := scanSet.builderOptions(cmd)
	if err != nil {
		return err
	}

	s, err := store.New(store.Config{Path: scanOutputPath})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	cfg := scanner.Config{
		Set:            set,
		Store:          s,
		Logger:         newLogger(cmd),
		SnippetContext: scanContext,
		Options:        options,
	}
	if scanBlobsDir != "" {
		blobs, err := datastore.NewBlobStore(scanBlobsDir)
		if err != nil {
			return err
		}
		cfg.Blobs = blobs
	}

	ctx := commandContext(cmd)
	core, err := scanner.NewCore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating scanner: %w", err)
	}
	defer core.Close()

	enumerator := enum.ForPaths(enum.Config{
		IncludeHidden: scanIncludeHidden,
		MaxFileSize:   scanMaxFileSize,
		Readers:       scanReaders,
	}, args...)

	summary, err := core.ScanEnumerator(ctx, enumerator, func(r *scanner.ScanResult) error {
		if verbose {
			status(cmd, "%s: %d hits", r.Source.Path, len(r.Hits))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	// Keep stdout pure JSON in json and sarif modes.
	out := cmd.OutOrStdout()
	if scanOutputFormat != "human" {
		out = cmd.ErrOrStderr()
	}
	if !quiet || scanOutputFormat == "human" {
		fmt.Fprintf(out, "Scan complete: %d hits in %d sources (%d duplicate)\n",
			summary.Hits, summary.Sources, summary.Duplicates)
		if scanOutputPath != ":memory:" {
			fmt.Fprintf(out, "Results stored in: %s\n", scanOutputPath)
		}
	}

	if scanOutputFormat == "human" {
		return nil
	}
	hits, err := s.GetAllHits()
	if err != nil {
		return fmt.Errorf("retrieving hits: %w", err)
	}
	if scanOutputFormat == "sarif" {
		return writeSARIF(cmd.OutOrStdout(), hits)
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(hits)
}
