// Package acwasm provides multi-pattern substring search backed by an
// isolated matcher module.
//
// The module shares nothing with the caller but a flat linear memory. It can
// run in-process (the default), or compiled to WebAssembly inside a wazero
// runtime.
//
// # Basic Usage
//
// Build a matcher and search text:
//
//	m, err := acwasm.NewBuilder(acwasm.Opts{
//	    MatchKind: acwasm.LeftmostLongestMatch,
//	}).Build(ctx, []string{"he", "she", "his", "hers"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	matches, err := m.FindAll("ushers")
//	for _, match := range matches {
//	    fmt.Printf("pattern %d at [%d, %d)\n", match.Pattern, match.Start, match.End)
//	}
//
// # Running Under WebAssembly
//
// Pass the compiled module (see ./wasm) to run every search inside wazero:
//
//	m, err := acwasm.NewBuilder(opts, acwasm.WithWasm(wasmBytes)).Build(ctx, patterns)
package acwasm

import (
	"context"
	"fmt"
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/host"
	"github.com/praetorian-inc/acwasm/pkg/module"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Re-export commonly used types for convenience.
type (
	// Match is one occurrence of a pattern: pattern index and half-open
	// byte offsets.
	Match = types.Match

	// MatchKind selects which matches are reported when several overlap.
	MatchKind = types.MatchKind

	// Engine selects the automaton implementation.
	Engine = types.Engine
)

const (
	StandardMatch        = types.StandardMatch
	LeftmostFirstMatch   = types.LeftmostFirstMatch
	LeftmostLongestMatch = types.LeftmostLongestMatch

	EngineAuto          = types.EngineAuto
	EngineDeterministic = types.EngineDeterministic
	EngineHyperscan     = types.EngineHyperscan
)

// Opts defines how patterns are matched.
type Opts struct {
	ASCIICaseInsensitive bool
	// MatchOnlyWholeWords drops matches that touch a letter or digit on
	// either side.
	MatchOnlyWholeWords bool
	MatchKind           MatchKind
	Engine              Engine
}

func (o Opts) config() types.Config {
	return types.Config{
		ASCIICaseInsensitive: o.ASCIICaseInsensitive,
		MatchKind:            o.MatchKind,
		Engine:               o.Engine,
	}
}

// builderConfig holds where and how the module runs.
type builderConfig struct {
	client     *host.Client
	transport  host.Transport
	wasm       []byte
	logger     module.DebugLogger
	arenaLimit uint32
}

// Option configures a Builder.
type Option func(*builderConfig)

// WithClient shares an existing client between matchers. The matcher does
// not close it.
func WithClient(c *host.Client) Option {
	return func(b *builderConfig) {
		b.client = c
	}
}

// WithTransport runs the matcher over t. The matcher takes ownership of t
// and closes it.
func WithTransport(t host.Transport) Option {
	return func(b *builderConfig) {
		b.transport = t
	}
}

// WithWasm runs the matcher inside wazero using the given module binary.
func WithWasm(wasm []byte) Option {
	return func(b *builderConfig) {
		b.wasm = wasm
	}
}

// WithLogger sets the logger of an in-process module.
func WithLogger(l module.DebugLogger) Option {
	return func(b *builderConfig) {
		b.logger = l
	}
}

// WithArenaLimit caps the linear memory of an in-process module.
func WithArenaLimit(limit uint32) Option {
	return func(b *builderConfig) {
		b.arenaLimit = limit
	}
}

// Builder builds matchers with a fixed set of options.
type Builder struct {
	opts   Opts
	config builderConfig
}

// NewBuilder creates a Builder.
//
// By default every matcher gets its own in-process module. Use WithWasm,
// WithTransport or WithClient to change that.
func NewBuilder(opts Opts, options ...Option) *Builder {
	b := &Builder{opts: opts}
	for _, opt := range options {
		opt(&b.config)
	}
	return b
}

func (b *Builder) client(ctx context.Context) (*host.Client, bool, error) {
	switch {
	case b.config.client != nil:
		return b.config.client, false, nil
	case b.config.transport != nil:
		return host.NewClient(b.config.transport), true, nil
	case b.config.wasm != nil:
		t, err := host.NewWazero(ctx, b.config.wasm)
		if err != nil {
			return nil, false, fmt.Errorf("starting wasm module: %w", err)
		}
		return host.NewClient(t), true, nil
	default:
		var opts []module.Option
		if b.config.logger != nil {
			opts = append(opts, module.WithLogger(b.config.logger))
		}
		return host.NewClient(host.NewInProcess(b.config.arenaLimit, opts...)), true, nil
	}
}

// Build compiles patterns into a Matcher. Pattern i is reported as
// Match.Pattern i.
func (b *Builder) Build(ctx context.Context, patterns []string) (*Matcher, error) {
	raw := make([][]byte, len(patterns))
	for i, p := range patterns {
		raw[i] = []byte(p)
	}
	return b.BuildBytes(ctx, raw)
}

// BuildBytes is Build for byte patterns.
func (b *Builder) BuildBytes(ctx context.Context, patterns [][]byte) (*Matcher, error) {
	c, owned, err := b.client(ctx)
	if err != nil {
		return nil, err
	}

	h, err := c.BuildMatcher(ctx, patterns, b.opts.config())
	if err != nil {
		if owned {
			c.Close(ctx)
		}
		return nil, fmt.Errorf("building matcher: %w", err)
	}

	return &Matcher{
		client:       c,
		ownsClient:   owned,
		handle:       h,
		opts:         b.opts,
		patternCount: len(patterns),
	}, nil
}

// Matcher searches text for a fixed set of patterns. It is safe for
// concurrent use.
type Matcher struct {
	mu           sync.RWMutex
	client       *host.Client
	ownsClient   bool
	handle       host.Handle
	opts         Opts
	patternCount int
	closed       bool
}

var errClosed = fmt.Errorf("%w: matcher is closed", types.ErrContractViolation)

// PatternCount returns the number of patterns the matcher was built with.
func (m *Matcher) PatternCount() int {
	return m.patternCount
}

// Opts returns the options the matcher was built with.
func (m *Matcher) Opts() Opts {
	return m.opts
}

// FindAll returns all non-overlapping matches in haystack.
func (m *Matcher) FindAll(haystack string) ([]Match, error) {
	return m.FindNWithContext(context.Background(), haystack, -1)
}

// FindN returns up to n non-overlapping matches. A negative n returns all.
func (m *Matcher) FindN(haystack string, n int) ([]Match, error) {
	return m.FindNWithContext(context.Background(), haystack, n)
}

// FindAllWithContext is FindAll with a caller-supplied context.
func (m *Matcher) FindAllWithContext(ctx context.Context, haystack string) ([]Match, error) {
	return m.FindNWithContext(ctx, haystack, -1)
}

// FindNWithContext is FindN with a caller-supplied context.
func (m *Matcher) FindNWithContext(ctx context.Context, haystack string, n int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}
	if n == 0 {
		return nil, nil
	}

	// With whole-word filtering the module's limit would count matches
	// that get dropped, so the limit is applied here instead.
	limit := module.Unlimited
	if n > 0 && !m.opts.MatchOnlyWholeWords && uint64(n) < uint64(module.Unlimited) {
		limit = uint32(n)
	}

	matches, err := m.client.FindMatches(ctx, m.handle, []byte(haystack), limit)
	if err != nil {
		return nil, err
	}
	if m.opts.MatchOnlyWholeWords {
		matches = filterWholeWords(haystack, matches)
	}
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// IsMatch reports whether any pattern occurs in haystack. Whole-word
// filtering is not applied.
func (m *Matcher) IsMatch(haystack string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, errClosed
	}
	return m.client.IsMatch(context.Background(), m.handle, []byte(haystack))
}

// FindOverlapping returns every match in haystack, including matches that
// overlap. The matcher must use StandardMatch.
func (m *Matcher) FindOverlapping(haystack string) ([]Match, error) {
	it, err := m.IterOverlapping(haystack)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var matches []Match
	for match, ok := it.Next(); ok; match, ok = it.Next() {
		matches = append(matches, match)
	}
	return matches, it.Err()
}

// Iter returns an iterator over the non-overlapping matches in haystack.
func (m *Matcher) Iter(haystack string) (*Iter, error) {
	return m.iter(haystack, host.Sequential)
}

// IterOverlapping returns an iterator over every match in haystack. The
// matcher must use StandardMatch.
func (m *Matcher) IterOverlapping(haystack string) (*Iter, error) {
	return m.iter(haystack, host.Overlapping)
}

func (m *Matcher) iter(haystack string, kind host.IterKind) (*Iter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}
	ctx := context.Background()
	h, err := m.client.OpenIterator(ctx, m.handle, []byte(haystack), kind)
	if err != nil {
		return nil, err
	}
	return &Iter{
		client:     m.client,
		handle:     h,
		kind:       kind,
		haystack:   haystack,
		wholeWords: m.opts.MatchOnlyWholeWords,
	}, nil
}

// Close destroys the matcher. Iterators opened from it stay usable until
// they are exhausted or closed.
func (m *Matcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	ctx := context.Background()
	err := m.client.DestroyMatcher(ctx, m.handle)
	if m.ownsClient {
		if cerr := m.client.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}

// Iter walks matches one at a time. It is not safe for concurrent use.
//
//	it, err := m.Iter(text)
//	for match, ok := it.Next(); ok; match, ok = it.Next() {
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
type Iter struct {
	client     *host.Client
	handle     host.Handle
	kind       host.IterKind
	haystack   string
	wholeWords bool
	err        error
}

// Next returns the next match. It returns false when the matches are
// exhausted or an error occurred; the iterator is released at that point.
func (it *Iter) Next() (Match, bool) {
	for it.handle != 0 {
		m, ok, err := it.client.Next(context.Background(), it.handle, it.kind)
		if err != nil {
			it.err = err
			it.Close()
			return Match{}, false
		}
		if !ok {
			it.Close()
			return Match{}, false
		}
		if it.wholeWords && !isWholeWord(it.haystack, m.Start, m.End) {
			continue
		}
		return m, true
	}
	return Match{}, false
}

// Err returns the first error Next ran into.
func (it *Iter) Err() error {
	return it.err
}

// Close releases the iterator early. It is safe to call more than once.
func (it *Iter) Close() error {
	if it.handle == 0 {
		return nil
	}
	h := it.handle
	it.handle = 0
	err := it.client.CloseIterator(context.Background(), h, it.kind)
	if err != nil && it.err == nil {
		it.err = err
	}
	return err
}
