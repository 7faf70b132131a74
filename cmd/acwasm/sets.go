package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm/pkg/config"
)

var (
	setsConfigPath string
	setsFormat     string
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Inspect pattern sets",
	Long:  "Commands for listing and inspecting pattern sets",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pattern sets",
	Long:  "Display the builtin pattern sets, or the one loaded from --config",
	RunE:  runSetsList,
}

func init() {
	setsCmd.AddCommand(setsListCmd)
	setsListCmd.Flags().StringVar(&setsConfigPath, "config", "", "Path to a pattern set YAML file")
	setsListCmd.Flags().StringVar(&setsFormat, "format", "table", "Output format: table, json")
}

func runSetsList(cmd *cobra.Command, args []string) error {
	var sets []*config.PatternSet
	if setsConfigPath != "" {
		set, err := config.LoadFile(setsConfigPath)
		if err != nil {
			return fmt.Errorf("loading pattern set from %s: %w", setsConfigPath, err)
		}
		sets = append(sets, set)
	} else {
		for _, name := range config.BuiltinNames() {
			set, err := config.LoadBuiltin(name)
			if err != nil {
				return fmt.Errorf("loading builtin pattern set %s: %w", name, err)
			}
			sets = append(sets, set)
		}
	}

	switch setsFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(sets)
	case "table":
		return outputSetsTable(cmd, sets)
	default:
		return fmt.Errorf("unknown output format: %s", setsFormat)
	}
}

func outputSetsTable(cmd *cobra.Command, sets []*config.PatternSet) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Name\tPatterns\tKind\tOptions\tDescription\n")
	fmt.Fprintf(w, "----\t--------\t----\t-------\t-----------\n")

	for _, set := range sets {
		kind := set.MatchKind
		if kind == "" {
			kind = "standard"
		}
		options := ""
		if set.ASCIICaseInsensitive {
			options += "i"
		}
		if set.MatchOnlyWholeWords {
			options += "w"
		}
		if options == "" {
			options = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", set.Name, len(set.Patterns), kind, options, set.Description)
	}
	return nil
}
