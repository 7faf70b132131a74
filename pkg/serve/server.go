// Package serve exposes a matcher over a newline-delimited JSON protocol.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/praetorian-inc/acwasm/pkg/scanner"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server answers requests against one scanner core.
type Server struct {
	core    *scanner.Core
	setName string
	encoder *json.Encoder
	decoder *json.Decoder
}

// NewServer creates a new streaming server. setName is reported in the
// ready message.
func NewServer(core *scanner.Core, setName string, in io.Reader, out io.Writer) *Server {
	return &Server{
		core:    core,
		setName: setName,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Process requests until input closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	switch req.Type {
	case "find":
		s.handleFind(ctx, req.Type, req.Payload, false)
	case "find_overlapping":
		s.handleFind(ctx, req.Type, req.Payload, true)
	case "is_match":
		s.handleIsMatch(req.Payload)
	case "scan":
		s.handleScan(ctx, req.Payload)
	case "scan_batch":
		s.handleScanBatch(ctx, req.Payload)
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{
		Version:  Version,
		Set:      s.setName,
		Patterns: s.core.Matcher().PatternCount(),
	})
}

func (s *Server) handleFind(ctx context.Context, reqType string, payload json.RawMessage, overlapping bool) {
	var p FindPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError(reqType, err.Error())
		return
	}

	m := s.core.Matcher()
	var matches []types.Match
	var err error
	switch {
	case overlapping:
		matches, err = m.FindOverlapping(p.Content)
	case p.Limit != nil:
		matches, err = m.FindNWithContext(ctx, p.Content, *p.Limit)
	default:
		matches, err = m.FindAllWithContext(ctx, p.Content)
	}
	if err != nil {
		s.sendError(reqType, err.Error())
		return
	}
	if matches == nil {
		matches = []types.Match{}
	}
	s.send(reqType, FindData{Matches: matches})
}

func (s *Server) handleIsMatch(payload json.RawMessage) {
	var p IsMatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("is_match", err.Error())
		return
	}
	ok, err := s.core.Matcher().IsMatch(p.Content)
	if err != nil {
		s.sendError("is_match", err.Error())
		return
	}
	s.send("is_match", IsMatchData{Match: ok})
}

func (s *Server) handleScan(ctx context.Context, payload json.RawMessage) {
	var p ScanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan", err.Error())
		return
	}

	result, err := s.scan(ctx, ContentItem{Source: p.Source, Content: p.Content})
	if err != nil {
		s.sendError("scan", err.Error())
		return
	}
	s.send("scan", result)
}

func (s *Server) handleScanBatch(ctx context.Context, payload json.RawMessage) {
	var p ScanBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan_batch", err.Error())
		return
	}

	data := BatchData{Results: []*scanner.ScanResult{}}
	for _, item := range p.Items {
		result, err := s.scan(ctx, item)
		if err != nil {
			// Skip items that fail to scan
			continue
		}
		data.Results = append(data.Results, result)
		data.Total += len(result.Hits)
	}
	s.send("scan_batch", data)
}

func (s *Server) scan(ctx context.Context, item ContentItem) (*scanner.ScanResult, error) {
	content := []byte(item.Content)
	return s.core.Scan(ctx, content, types.Source{
		ID:   types.ComputeContentID(content),
		Path: item.Source,
		Size: int64(len(content)),
	})
}

func (s *Server) send(respType string, v interface{}) {
	data, _ := json.Marshal(v)
	s.encoder.Encode(Response{
		Success: true,
		Type:    respType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
