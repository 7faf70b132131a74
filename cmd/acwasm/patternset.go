package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm"
	"github.com/praetorian-inc/acwasm/pkg/config"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// setFlags selects a pattern set and overrides its options.
type setFlags struct {
	configPath string
	builtin    string
	patterns   []string
	ignoreCase bool
	wholeWords bool
	kind       string
	engine     string
	wasmPath   string
	arenaLimit uint32
}

func (f *setFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Path to a pattern set YAML file")
	flags.StringVar(&f.builtin, "set", "", "Name of a builtin pattern set (see 'acwasm sets list')")
	flags.StringArrayVarP(&f.patterns, "pattern", "p", nil, "Pattern to search for (repeatable)")
	flags.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "ASCII case-insensitive matching")
	flags.BoolVarP(&f.wholeWords, "whole-words", "w", false, "Only report matches that are whole words")
	flags.StringVar(&f.kind, "kind", "", "Match kind: standard, leftmost-first, leftmost-longest")
	flags.StringVar(&f.engine, "engine", "", "Automaton engine: auto, dfa, hyperscan")
	flags.StringVar(&f.wasmPath, "wasm", "", "Run the matcher inside this WebAssembly module")
	flags.Uint32Var(&f.arenaLimit, "arena-limit", 0, "Cap the in-process module's linear memory in bytes (0 = unlimited)")
}

// load resolves the pattern set: --config, then --set, then --pattern
// alone. Patterns from --pattern are appended to a loaded set.
func (f *setFlags) load() (*config.PatternSet, error) {
	var set *config.PatternSet
	var err error
	switch {
	case f.configPath != "":
		set, err = config.LoadFile(f.configPath)
	case f.builtin != "":
		set, err = config.LoadBuiltin(f.builtin)
	case len(f.patterns) > 0:
		set = &config.PatternSet{Name: "cli"}
	default:
		return nil, fmt.Errorf("no patterns: use --config, --set or --pattern")
	}
	if err != nil {
		return nil, err
	}

	set.Patterns = append(set.Patterns, f.patterns...)
	if f.ignoreCase {
		set.ASCIICaseInsensitive = true
	}
	if f.wholeWords {
		set.MatchOnlyWholeWords = true
	}
	if f.kind != "" {
		set.MatchKind = f.kind
	}
	if f.engine != "" {
		set.Engine = f.engine
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// builderOptions returns where the matcher runs.
func (f *setFlags) builderOptions(cmd *cobra.Command) ([]acwasm.Option, error) {
	options := []acwasm.Option{acwasm.WithLogger(newLogger(cmd))}
	if f.arenaLimit > 0 {
		options = append(options, acwasm.WithArenaLimit(f.arenaLimit))
	}
	if f.wasmPath != "" {
		wasm, err := os.ReadFile(f.wasmPath)
		if err != nil {
			return nil, fmt.Errorf("reading wasm module: %w", err)
		}
		options = append(options, acwasm.WithWasm(wasm))
	}
	return options, nil
}

// patternText returns the text of pattern id, or a placeholder if id is
// out of range.
func patternText(set *config.PatternSet, m types.Match) string {
	if m.Pattern < 0 || m.Pattern >= len(set.Patterns) {
		return fmt.Sprintf("#%d", m.Pattern)
	}
	return set.Patterns[m.Pattern]
}
