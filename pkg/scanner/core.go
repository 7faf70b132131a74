// Package scanner runs a pattern set over enumerated content and records
// hits in a store.
package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/praetorian-inc/acwasm"
	"github.com/praetorian-inc/acwasm/pkg/config"
	"github.com/praetorian-inc/acwasm/pkg/enum"
	"github.com/praetorian-inc/acwasm/pkg/module"
	"github.com/praetorian-inc/acwasm/pkg/store"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// DefaultSnippetContext is the number of bytes kept either side of a hit.
const DefaultSnippetContext = 32

// OptsFromSet converts a pattern set's options into matcher options.
func OptsFromSet(set *config.PatternSet) (acwasm.Opts, error) {
	cfg, err := set.Config()
	if err != nil {
		return acwasm.Opts{}, err
	}
	return acwasm.Opts{
		ASCIICaseInsensitive: cfg.ASCIICaseInsensitive,
		MatchOnlyWholeWords:  set.MatchOnlyWholeWords,
		MatchKind:            cfg.MatchKind,
		Engine:               cfg.Engine,
	}, nil
}

// BlobWriter keeps a copy of scanned content.
type BlobWriter interface {
	Store(content []byte) (types.ContentID, error)
}

// Config configures a Core.
type Config struct {
	// Set is the pattern set to search for.
	Set *config.PatternSet
	// Store receives sources and hits. A nil Store gets an in-memory one
	// that Close releases.
	Store store.Store
	// Logger receives progress messages.
	Logger module.DebugLogger
	// SnippetContext overrides DefaultSnippetContext when positive.
	SnippetContext int
	// Options are passed to the matcher builder.
	Options []acwasm.Option
	// Blobs, if set, receives the content of every source with hits.
	Blobs BlobWriter
}

// Core wraps the matcher and store for scanning operations.
type Core struct {
	matcher   *acwasm.Matcher
	patterns  []string
	store     store.Store
	ownsStore bool
	logger    module.DebugLogger
	context   int
	blobs     BlobWriter
}

// NewCore builds the matcher for cfg.Set.
func NewCore(ctx context.Context, cfg Config) (*Core, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = module.NoopLogger{}
	}
	if cfg.Set == nil {
		return nil, fmt.Errorf("pattern set is required")
	}
	if err := cfg.Set.Validate(); err != nil {
		return nil, err
	}
	opts, err := OptsFromSet(cfg.Set)
	if err != nil {
		return nil, err
	}

	logger.Log("Creating matcher for %q with %d patterns...", cfg.Set.Name, len(cfg.Set.Patterns))
	m, err := acwasm.NewBuilder(opts, cfg.Options...).Build(ctx, cfg.Set.Patterns)
	if err != nil {
		logger.Log("matcher build failed: %v", err)
		return nil, err
	}

	s, owns := cfg.Store, false
	if s == nil {
		s, owns = store.NewMemory(), true
	}

	snippetContext := cfg.SnippetContext
	if snippetContext <= 0 {
		snippetContext = DefaultSnippetContext
	}

	return &Core{
		matcher:   m,
		patterns:  cfg.Set.Patterns,
		store:     s,
		ownsStore: owns,
		logger:    logger,
		context:   snippetContext,
		blobs:     cfg.Blobs,
	}, nil
}

// Store returns the store hits are recorded in.
func (c *Core) Store() store.Store {
	return c.store
}

// Matcher returns the underlying matcher.
func (c *Core) Matcher() *acwasm.Matcher {
	return c.matcher
}

// Scan searches content and records src and its hits. Content already in
// the store is not searched again.
func (c *Core) Scan(ctx context.Context, content []byte, src types.Source) (*ScanResult, error) {
	seen, err := c.store.SourceExists(src.ID)
	if err != nil {
		return nil, err
	}
	if err := c.store.AddSource(src); err != nil {
		return nil, err
	}

	if seen {
		stored, err := c.store.GetHits(src.ID)
		if err != nil {
			return nil, err
		}
		hits := make([]*types.Hit, len(stored))
		for i, h := range stored {
			cp := *h
			cp.Path = src.Path
			hits[i] = &cp
		}
		return &ScanResult{Source: src, Hits: hits, Duplicate: true}, nil
	}

	matches, err := c.matcher.FindAllWithContext(ctx, string(content))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", src.Path, err)
	}

	hits := make([]*types.Hit, 0, len(matches))
	for _, m := range matches {
		h := &types.Hit{
			Source:      src.ID,
			Path:        src.Path,
			Match:       m,
			PatternText: c.patterns[m.Pattern],
			Location:    types.Locate(content, m.Start, m.End),
			Snippet:     types.NewSnippet(content, m.Start, m.End, c.context),
		}
		if err := c.store.AddHit(h); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	if c.blobs != nil && len(hits) > 0 {
		if _, err := c.blobs.Store(content); err != nil {
			return nil, fmt.Errorf("storing %s: %w", src.Path, err)
		}
	}
	c.logger.Log("scanned %s: %d hits", src.Path, len(hits))
	return &ScanResult{Source: src, Hits: hits}, nil
}

// ScanEnumerator scans everything e yields. onResult, if non-nil, is called
// for every source with at least one hit; calls are serialized.
func (c *Core) ScanEnumerator(ctx context.Context, e enum.Enumerator, onResult func(*ScanResult) error) (*Summary, error) {
	var mu sync.Mutex
	summary := &Summary{}

	err := e.Enumerate(ctx, func(content []byte, src types.Source) error {
		result, err := c.Scan(ctx, content, src)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		summary.Sources++
		if result.Duplicate {
			summary.Duplicates++
		}
		summary.Hits += len(result.Hits)
		if onResult != nil && len(result.Hits) > 0 {
			return onResult(result)
		}
		return nil
	})
	return summary, err
}

// Close releases the matcher, and the store if Core created it.
func (c *Core) Close() error {
	err := c.matcher.Close()
	if c.ownsStore {
		if serr := c.store.Close(); err == nil {
			err = serr
		}
	}
	return err
}
