// Package config loads pattern sets from YAML.
//
// A pattern set file looks like:
//
//	name: markers
//	ascii_case_insensitive: true
//	match_only_whole_words: true
//	match_kind: leftmost-first   # standard | leftmost-first | leftmost-longest
//	engine: auto                 # auto | dfa | hyperscan
//	patterns:
//	  - TODO
//	  - FIXME
//	patterns_file: more.txt      # one pattern per line, relative to this file
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/praetorian-inc/acwasm/pkg/types"
	"gopkg.in/yaml.v3"
)

// PatternSet is a named list of patterns with its matching options.
type PatternSet struct {
	Name                 string   `yaml:"name"`
	Description          string   `yaml:"description,omitempty"`
	ASCIICaseInsensitive bool     `yaml:"ascii_case_insensitive"`
	MatchOnlyWholeWords  bool     `yaml:"match_only_whole_words"`
	MatchKind            string   `yaml:"match_kind,omitempty"`
	Engine               string   `yaml:"engine,omitempty"`
	Patterns             []string `yaml:"patterns"`
	PatternsFile         string   `yaml:"patterns_file,omitempty"`
}

// Config returns the matcher configuration of the set.
func (p *PatternSet) Config() (types.Config, error) {
	kind, err := types.ParseMatchKind(p.MatchKind)
	if err != nil {
		return types.Config{}, err
	}
	engine, err := types.ParseEngine(p.Engine)
	if err != nil {
		return types.Config{}, err
	}
	return types.Config{
		ASCIICaseInsensitive: p.ASCIICaseInsensitive,
		MatchKind:            kind,
		Engine:               engine,
	}, nil
}

// Validate checks the options and that there is something to match.
func (p *PatternSet) Validate() error {
	if _, err := p.Config(); err != nil {
		return fmt.Errorf("pattern set %q: %w", p.Name, err)
	}
	if len(p.Patterns) == 0 {
		return fmt.Errorf("pattern set %q has no patterns", p.Name)
	}
	return nil
}

// Parse parses a pattern set from YAML bytes. patterns_file is not
// resolved; use Load or LoadFile for that.
func Parse(data []byte) (*PatternSet, error) {
	var set PatternSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &set, nil
}

// Load parses a pattern set and resolves its patterns_file against fsys.
// dir is the directory of the YAML file inside fsys.
func Load(fsys fs.FS, dir string, data []byte) (*PatternSet, error) {
	set, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if set.PatternsFile != "" {
		name := path.Join(dir, filepath.ToSlash(set.PatternsFile))
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read patterns file %s: %w", set.PatternsFile, err)
		}
		set.Patterns = append(set.Patterns, ReadLines(raw)...)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadFile loads a pattern set from a YAML file path.
func LoadFile(file string) (*PatternSet, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", file, err)
	}
	dir, base := filepath.Split(filepath.Clean(file))
	if dir == "" {
		dir = "."
	}
	set, err := Load(os.DirFS(dir), ".", data)
	if err != nil {
		return nil, err
	}
	if set.Name == "" {
		set.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return set, nil
}

// LoadBuiltin loads one of the embedded pattern sets by name.
func LoadBuiltin(name string) (*PatternSet, error) {
	data, err := fs.ReadFile(builtinSetsFS, path.Join("sets", name+".yml"))
	if err != nil {
		return nil, fmt.Errorf("unknown builtin pattern set %q", name)
	}
	return Load(builtinSetsFS, "sets", data)
}

// BuiltinNames lists the embedded pattern sets.
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinSetsFS, "sets")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".yml" {
			names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
		}
	}
	sort.Strings(names)
	return names
}

// ReadLines splits newline separated patterns. Blank lines and lines
// starting with '#' are skipped; a trailing '\r' is dropped.
func ReadLines(data []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
