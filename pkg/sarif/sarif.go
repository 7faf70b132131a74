// Package sarif renders scan hits as a SARIF 2.1.0 log.
package sarif

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "acwasm"

	// DefaultLevel is the result level used for every hit.
	DefaultLevel = "note"

	fingerprintKey = "acwasmHit/v1"
)

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes one pattern of the set.
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
}

// ShortDescription contains rule description text
type ShortDescription struct {
	Text string `json:"text"`
}

// Result is a single hit.
type Result struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             Message           `json:"message"`
	Locations           []Location        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// Message contains the result message
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region specifies the byte and line/column range. End columns are
// exclusive, as in SARIF.
type Region struct {
	StartLine   int      `json:"startLine"`
	StartColumn int      `json:"startColumn"`
	EndLine     int      `json:"endLine"`
	EndColumn   int      `json:"endColumn"`
	ByteOffset  int      `json:"byteOffset"`
	ByteLength  int      `json:"byteLength"`
	Snippet     *Snippet `json:"snippet,omitempty"`
}

// Snippet contains the matched text
type Snippet struct {
	Text string `json:"text"`
}

// NewReport creates a report with one empty run for the given tool version.
func NewReport(toolVersion string) *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: toolVersion,
						Rules:   []Rule{},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// RuleID is the SARIF rule id of a pattern.
func RuleID(pattern int) string {
	return fmt.Sprintf("pattern/%d", pattern)
}

// AddPattern adds a rule for pattern id with its text. Adding the same id
// twice is a no-op.
func (r *Report) AddPattern(pattern int, text string) {
	if r.ruleIndex(RuleID(pattern)) >= 0 {
		return
	}
	name := text
	if name == "" {
		name = RuleID(pattern)
	}
	driver := &r.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, Rule{
		ID:   RuleID(pattern),
		Name: name,
		ShortDescription: ShortDescription{
			Text: fmt.Sprintf("Literal pattern %q", text),
		},
	})
}

func (r *Report) ruleIndex(id string) int {
	for i, rule := range r.Runs[0].Tool.Driver.Rules {
		if rule.ID == id {
			return i
		}
	}
	return -1
}

// AddResult adds a hit, registering its pattern as a rule if needed.
func (r *Report) AddResult(h *types.Hit) {
	r.AddPattern(h.Match.Pattern, h.PatternText)
	id := RuleID(h.Match.Pattern)

	region := Region{
		StartLine:   h.Location.Start.Line,
		StartColumn: h.Location.Start.Column,
		EndLine:     h.Location.End.Line,
		EndColumn:   h.Location.End.Column,
		ByteOffset:  h.Match.Start,
		ByteLength:  h.Match.Len(),
	}
	if len(h.Snippet.Matching) > 0 {
		region.Snippet = &Snippet{Text: string(h.Snippet.Matching)}
	}

	r.Runs[0].Results = append(r.Runs[0].Results, Result{
		RuleID:    id,
		RuleIndex: r.ruleIndex(id),
		Level:     DefaultLevel,
		Message: Message{
			Text: fmt.Sprintf("Pattern %q matched", h.PatternText),
		},
		Locations: []Location{
			{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{URI: formatFileURI(h.Path)},
					Region:           region,
				},
			},
		},
		PartialFingerprints: map[string]string{
			fingerprintKey: fmt.Sprintf("%s:%d:%d:%d", h.Source.Hex(), h.Match.Pattern, h.Match.Start, h.Match.End),
		},
	})
}

// FromHits builds a report holding hits. Rules are listed in pattern id
// order.
func FromHits(toolVersion string, hits []*types.Hit) *Report {
	r := NewReport(toolVersion)

	seen := make(map[int]string)
	for _, h := range hits {
		if _, ok := seen[h.Match.Pattern]; !ok {
			seen[h.Match.Pattern] = h.PatternText
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		r.AddPattern(id, seen[id])
	}

	for _, h := range hits {
		r.AddResult(h)
	}
	return r
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
