package scanner

import "github.com/praetorian-inc/acwasm/pkg/types"

// ScanResult holds the hits for one scanned source.
type ScanResult struct {
	Source types.Source `json:"source"`
	Hits   []*types.Hit `json:"hits"`
	// Duplicate is set when identical content was scanned before and the
	// hits were taken from the store.
	Duplicate bool `json:"duplicate,omitempty"`
}

// Summary counts what a scan run visited.
type Summary struct {
	Sources    int `json:"sources"`
	Duplicates int `json:"duplicates"`
	Hits       int `json:"hits"`
}
