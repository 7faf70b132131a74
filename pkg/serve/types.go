package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/acwasm/pkg/scanner"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "find" | "find_overlapping" | "is_match" | "scan" | "scan_batch" | "close"
	Payload json.RawMessage `json:"payload"`
}

// FindPayload is the payload for "find" and "find_overlapping" requests.
type FindPayload struct {
	Content string `json:"content"`
	// Limit caps the number of matches; absent means no limit. Ignored by
	// find_overlapping.
	Limit *int `json:"limit,omitempty"`
}

// IsMatchPayload is the payload for "is_match" requests.
type IsMatchPayload struct {
	Content string `json:"content"`
}

// ScanPayload is the payload for "scan" requests
type ScanPayload struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// ContentItem is one entry of a "scan_batch" request.
type ContentItem struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// ScanBatchPayload is the payload for "scan_batch" requests
type ScanBatchPayload struct {
	Items []ContentItem `json:"items"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version  string `json:"version"`
	Set      string `json:"set,omitempty"`
	Patterns int    `json:"patterns"`
}

// FindData is the data field for find responses.
type FindData struct {
	Matches []types.Match `json:"matches"`
}

// IsMatchData is the data field for "is_match" responses.
type IsMatchData struct {
	Match bool `json:"match"`
}

// BatchData is the data field for "scan_batch" responses.
type BatchData struct {
	Results []*scanner.ScanResult `json:"results"`
	Total   int                   `json:"total"`
}
