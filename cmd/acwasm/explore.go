package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm/pkg/datastore"
	"github.com/praetorian-inc/acwasm/pkg/explore"
)

var (
	exploreDatastore string
	exploreBlobsDir  string
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactively browse scan results",
	Long: `Launch an interactive TUI to browse hits from a results database.

Features:
  - Three-pane layout: filters, patterns table, hit details
  - Faceted search by pattern, file extension and top-level directory
  - Vi-style navigation (hjkl, Ctrl-f/b, g/G)
  - Opens the hit's file in $PAGER at the matching line, falling back to
    the copy kept by 'scan --store-blobs' when the file is gone`,
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().StringVar(&exploreDatastore, "datastore", "acwasm.db", "Path to the results database")
	exploreCmd.Flags().StringVar(&exploreBlobsDir, "blobs", "", "Directory written by scan --store-blobs")
}

func runExplore(cmd *cobra.Command, args []string) error {
	var opts []explore.Option
	if exploreBlobsDir != "" {
		opts = append(opts, explore.WithBlobs(&datastore.BlobStore{Root: exploreBlobsDir}))
	}

	model, err := explore.New(exploreDatastore, opts...)
	if err != nil {
		return fmt.Errorf("loading datastore: %w", err)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(commandContext(cmd)))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explore TUI: %w", err)
	}
	return nil
}
