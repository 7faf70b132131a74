package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm/pkg/sarif"
	"github.com/praetorian-inc/acwasm/pkg/store"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

var (
	reportDatastore string
	reportFormat    string
	reportColor     string
	reportMaxHits   int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from scan results",
	Long:  "Read hits from a results database and print them grouped by pattern",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "acwasm.db", "Path to the results database")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportMaxHits, "max-hits", 3, "Hits shown per pattern in human output (0 = all)")
}

// patternGroup collects the hits of one pattern.
type patternGroup struct {
	Pattern int          `json:"pattern"`
	Text    string       `json:"pattern_text"`
	Hits    []*types.Hit `json:"hits"`
}

// groupHits groups hits by pattern, in order of first appearance.
func groupHits(hits []*types.Hit) []*patternGroup {
	var groups []*patternGroup
	index := make(map[int]*patternGroup)
	for _, h := range hits {
		g, ok := index[h.Match.Pattern]
		if !ok {
			g = &patternGroup{Pattern: h.Match.Pattern, Text: h.PatternText}
			index[h.Match.Pattern] = g
			groups = append(groups, g)
		}
		g.Hits = append(g.Hits, h)
	}
	return groups
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportDatastore == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if _, err := os.Stat(reportDatastore); err != nil {
		return fmt.Errorf("datastore not found: %s", reportDatastore)
	}

	s, err := store.New(store.Config{Path: reportDatastore})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	hits, err := s.GetAllHits()
	if err != nil {
		return fmt.Errorf("retrieving hits: %w", err)
	}
	groups := groupHits(hits)

	switch reportFormat {
	case "json":
		if groups == nil {
			groups = []*patternGroup{}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(groups)
	case "sarif":
		return writeSARIF(cmd.OutOrStdout(), hits)
	case "human":
		st, err := resolveStyles(reportColor)
		if err != nil {
			return err
		}
		return outputReportHuman(cmd.OutOrStdout(), st, groups, reportMaxHits)
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// writeSARIF writes hits as an indented SARIF log.
func writeSARIF(out io.Writer, hits []*types.Hit) error {
	data, err := sarif.FromHits(version, hits).ToJSON()
	if err != nil {
		return fmt.Errorf("encoding SARIF: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func outputReportHuman(out io.Writer, s *styles, groups []*patternGroup, maxHits int) error {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No hits.")
		return nil
	}

	for i, g := range groups {
		fmt.Fprintf(out, "%s %s\n",
			s.heading.Sprintf("Pattern %d/%d:", i+1, len(groups)),
			s.pattern.Sprintf("%q", g.Text))

		shown := g.Hits
		if maxHits > 0 && len(shown) > maxHits {
			fmt.Fprintf(out, "Showing %d/%d hits:\n", maxHits, len(shown))
			shown = shown[:maxHits]
		}

		for k, h := range shown {
			fmt.Fprintf(out, "\n    %s\n", s.heading.Sprintf("Hit %d/%d", k+1, len(g.Hits)))
			fmt.Fprintf(out, "    %s %s\n", s.heading.Sprint("File:"), s.metadata.Sprint(h.Path))
			fmt.Fprintf(out, "    %s %s\n", s.heading.Sprint("Content:"), s.id.Sprint(h.Source.Hex()))
			fmt.Fprintf(out, "    %s %d:%d-%d:%d\n", s.heading.Sprint("Lines:"),
				h.Location.Start.Line, h.Location.Start.Column,
				h.Location.End.Line, h.Location.End.Column)

			parts := formatSnippetWithParts(h.Snippet.Before, h.Snippet.Matching, h.Snippet.After, 200)
			fmt.Fprintf(out, "\n        %s%s%s%s%s\n",
				parts.prefix,
				parts.before,
				s.match.Sprint(parts.matching),
				parts.after,
				parts.suffix)
		}
		fmt.Fprint(out, "\n\n")
	}
	return nil
}
