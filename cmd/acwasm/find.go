package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm"
	"github.com/praetorian-inc/acwasm/pkg/config"
	"github.com/praetorian-inc/acwasm/pkg/scanner"
)

var (
	findSet         setFlags
	findOverlapping bool
	findLimit       int
	findFormat      string
	findColor       string
)

var findCmd = &cobra.Command{
	Use:   "find [text]",
	Short: "Find patterns in text",
	Long: `Search text for the patterns of a pattern set. The text is taken from
the argument, or from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

func init() {
	findSet.register(findCmd)
	findCmd.Flags().BoolVar(&findOverlapping, "overlapping", false, "Report overlapping matches (standard kind only)")
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", -1, "Maximum number of matches (-1 = all)")
	findCmd.Flags().StringVar(&findFormat, "format", "human", "Output format: human, json")
	findCmd.Flags().StringVar(&findColor, "color", "auto", "Color output: auto, always, never")
}

// findResult is one match as printed by find.
type findResult struct {
	Pattern     int    `json:"pattern"`
	PatternText string `json:"pattern_text"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

func runFind(cmd *cobra.Command, args []string) error {
	set, err := findSet.load()
	if err != nil {
		return err
	}

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	opts, err := scanner.OptsFromSet(set)
	if err != nil {
		return err
	}
	options, err := findSet.builderOptions(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	m, err := acwasm.NewBuilder(opts, options...).Build(ctx, set.Patterns)
	if err != nil {
		return err
	}
	defer m.Close()

	var matches []acwasm.Match
	if findOverlapping {
		matches, err = m.FindOverlapping(text)
		if err == nil && findLimit >= 0 && len(matches) > findLimit {
			matches = matches[:findLimit]
		}
	} else {
		matches, err = m.FindNWithContext(ctx, text, findLimit)
	}
	if err != nil {
		return err
	}

	results := make([]findResult, len(matches))
	for i, match := range matches {
		results[i] = findResult{
			Pattern:     match.Pattern,
			PatternText: patternText(set, match),
			Start:       match.Start,
			End:         match.End,
		}
	}

	switch findFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "human":
		s, err := resolveStyles(findColor)
		if err != nil {
			return err
		}
		return outputFindHuman(cmd.OutOrStdout(), s, set, text, results)
	default:
		return fmt.Errorf("unknown output format: %s", findFormat)
	}
}

func outputFindHuman(out io.Writer, s *styles, set *config.PatternSet, text string, results []findResult) error {
	if len(results) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%s %s [%d, %d) %s\n",
			s.heading.Sprint("Pattern"),
			s.pattern.Sprintf("%d", r.Pattern),
			r.Start, r.End,
			s.match.Sprint(strings.ToValidUTF8(text[r.Start:r.End], "�")))
	}
	fmt.Fprintf(out, "%d matches for %d patterns in %q\n", len(results), len(set.Patterns), set.Name)
	return nil
}
