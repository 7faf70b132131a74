package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/decode"
	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

var (
	errFailedRead  = fmt.Errorf("%w: failed to read from module memory", types.ErrMalformedInput)
	errFailedWrite = fmt.Errorf("%w: failed to write to module memory", types.ErrMalformedInput)
)

// messageRoom is the scratch space kept free in every operation for the
// module's error message. Longer messages are truncated.
const messageRoom = 256

// Handle is a module handle as seen by the host.
type Handle uint32

// Client speaks the boundary protocol over a Transport. It is safe for
// concurrent use; calls are serialized.
type Client struct {
	mu      sync.Mutex
	t       Transport
	scratch scratch
}

// NewClient returns a client over t. The client owns t and closes it.
func NewClient(t Transport) *Client {
	return &Client{t: t}
}

// Close releases the scratch block and the transport.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.scratch.release(ctx, c.t)
	if cerr := c.t.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

// startOperation locks the client and reserves size bytes of scratch plus
// room for an error message. Reservation happens before any export that can
// fail, since malloc and free reset the module's error channel.
func (c *Client) startOperation(ctx context.Context, size uint32) error {
	c.mu.Lock()
	if err := c.scratch.reserve(ctx, c.t, size+messageRoom); err != nil {
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Client) endOperation() {
	c.mu.Unlock()
}

func (c *Client) call(ctx context.Context, name string, params ...uint64) (uint32, error) {
	res, err := c.t.Call(ctx, name, params...)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return uint32(res[0]), nil
}

// lastError reads the module's error channel. It returns nil when the last
// call succeeded.
func (c *Client) lastError(ctx context.Context) error {
	code, err := c.call(ctx, "last_error")
	if err != nil {
		return err
	}
	if types.Status(code) == types.StatusOK {
		return nil
	}
	n, err := c.call(ctx, "last_error_message", 0, 0)
	if err != nil {
		return err
	}
	msg := ""
	if avail := c.scratch.remaining(); n > avail {
		n = avail
	}
	if n > 0 {
		buf := c.scratch.allocate(n)
		got, err := c.call(ctx, "last_error_message", uint64(buf), uint64(n))
		if err != nil {
			return err
		}
		b, ok := c.t.Memory().Read(buf, got)
		if !ok {
			return errFailedRead
		}
		msg = string(b)
	}
	return types.ErrorFor(types.Status(code), msg)
}

// callChecked performs a call and reports the module's error channel.
func (c *Client) callChecked(ctx context.Context, name string, params ...uint64) (uint32, error) {
	v, err := c.call(ctx, name, params...)
	if err != nil {
		return 0, err
	}
	if err := c.lastError(ctx); err != nil {
		return 0, err
	}
	return v, nil
}

func (c *Client) write(ptr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !c.t.Memory().Write(ptr, data) {
		return errFailedWrite
	}
	return nil
}

func flags(cfg types.Config) (aci, kind, engine uint64) {
	if cfg.ASCIICaseInsensitive {
		aci = 1
	}
	return aci, uint64(cfg.MatchKind), uint64(cfg.Engine)
}

// BuildMatcher builds a matcher using the length-prefixed encoding.
func (c *Client) BuildMatcher(ctx context.Context, patterns [][]byte, cfg types.Config) (Handle, error) {
	data, lens := decode.EncodeParallel(patterns)
	if err := c.startOperation(ctx, padded(len(data), len(lens)*memory.WordSize)); err != nil {
		return 0, err
	}
	defer c.endOperation()

	dataPtr := c.scratch.allocate(uint32(len(data)))
	lensPtr := c.scratch.allocate(uint32(len(lens) * memory.WordSize))
	if err := c.write(dataPtr, data); err != nil {
		return 0, err
	}
	for i, l := range lens {
		if !c.t.Memory().WriteUint32Le(lensPtr+uint32(i*memory.WordSize), l) {
			return 0, errFailedWrite
		}
	}

	aci, kind, engine := flags(cfg)
	h, err := c.call(ctx, "build_matcher", uint64(dataPtr), uint64(len(data)), uint64(lensPtr), uint64(len(lens)), aci, kind, engine)
	if err != nil {
		return 0, err
	}
	if h == 0 {
		return 0, c.lastError(ctx)
	}
	return Handle(h), nil
}

// BuildMatcherPacked builds a matcher using the delimiter encoding. Patterns
// must not contain zero bytes.
func (c *Client) BuildMatcherPacked(ctx context.Context, patterns [][]byte, cfg types.Config) (Handle, error) {
	packed, err := decode.EncodePacked(patterns)
	if err != nil {
		return 0, err
	}
	if err := c.startOperation(ctx, padded(len(packed))); err != nil {
		return 0, err
	}
	defer c.endOperation()

	ptr := c.scratch.allocate(uint32(len(packed)))
	if err := c.write(ptr, packed); err != nil {
		return 0, err
	}
	aci, kind, engine := flags(cfg)
	h, err := c.call(ctx, "build_matcher_packed", uint64(ptr), uint64(len(packed)), aci, kind, engine)
	if err != nil {
		return 0, err
	}
	if h == 0 {
		return 0, c.lastError(ctx)
	}
	return Handle(h), nil
}

// DestroyMatcher releases a matcher.
func (c *Client) DestroyMatcher(ctx context.Context, h Handle) error {
	if err := c.startOperation(ctx, 0); err != nil {
		return err
	}
	defer c.endOperation()
	_, err := c.callChecked(ctx, "destroy_matcher", uint64(h))
	return err
}

// PatternCount returns the number of patterns of a matcher.
func (c *Client) PatternCount(ctx context.Context, h Handle) (int, error) {
	if err := c.startOperation(ctx, 0); err != nil {
		return 0, err
	}
	defer c.endOperation()
	n, err := c.callChecked(ctx, "pattern_count", uint64(h))
	return int(n), err
}

// putText copies text into scratch. The caller has reserved room for it.
func (c *Client) putText(text []byte) (uint32, error) {
	ptr := c.scratch.allocate(uint32(len(text)))
	return ptr, c.write(ptr, text)
}

// IsMatch reports whether any pattern occurs in text.
func (c *Client) IsMatch(ctx context.Context, h Handle, text []byte) (bool, error) {
	if err := c.startOperation(ctx, padded(len(text))); err != nil {
		return false, err
	}
	defer c.endOperation()

	ptr, err := c.putText(text)
	if err != nil {
		return false, err
	}
	v, err := c.callChecked(ctx, "is_match", uint64(h), uint64(ptr), uint64(len(text)))
	return v == 1, err
}

// FindMatches returns up to limit non-overlapping matches in one call. Pass
// module.Unlimited for all of them.
func (c *Client) FindMatches(ctx context.Context, h Handle, text []byte, limit uint32) ([]types.Match, error) {
	if err := c.startOperation(ctx, padded(len(text), memory.WordSize)); err != nil {
		return nil, err
	}
	defer c.endOperation()

	ptr, err := c.putText(text)
	if err != nil {
		return nil, err
	}
	countOut := c.scratch.allocate(memory.WordSize)

	buf, err := c.callChecked(ctx, "find_matches", uint64(h), uint64(ptr), uint64(len(text)), uint64(limit), uint64(countOut))
	if err != nil {
		return nil, err
	}
	count, ok := c.t.Memory().ReadUint32Le(countOut)
	if !ok {
		return nil, errFailedRead
	}
	if buf == 0 {
		return nil, nil
	}

	raw, ok := c.t.Memory().Read(buf, count*types.MatchRecordSize)
	if !ok {
		return nil, errFailedRead
	}
	matches := memory.DecodeMatches(raw)

	if _, err := c.callChecked(ctx, "destroy_match_buffer", uint64(buf), uint64(count)); err != nil {
		return nil, err
	}
	return matches, nil
}

// IterKind selects sequential or overlapping iteration.
type IterKind int

const (
	Sequential IterKind = iota
	Overlapping
)

func (k IterKind) exports() (openName, nextName, closeName string) {
	if k == Overlapping {
		return "open_overlapping_iterator", "overlapping_iterator_next", "close_overlapping_iterator"
	}
	return "open_sequential_iterator", "sequential_iterator_next", "close_sequential_iterator"
}

// OpenIterator starts iterating the matches of text. The module keeps its
// own copy of text.
func (c *Client) OpenIterator(ctx context.Context, h Handle, text []byte, kind IterKind) (Handle, error) {
	if err := c.startOperation(ctx, padded(len(text))); err != nil {
		return 0, err
	}
	defer c.endOperation()

	ptr, err := c.putText(text)
	if err != nil {
		return 0, err
	}
	openName, _, _ := kind.exports()
	it, err := c.call(ctx, openName, uint64(h), uint64(ptr), uint64(len(text)))
	if err != nil {
		return 0, err
	}
	if it == 0 {
		return 0, c.lastError(ctx)
	}
	return Handle(it), nil
}

// Next returns the iterator's next match. ok is false once the iterator
// is exhausted.
func (c *Client) Next(ctx context.Context, it Handle, kind IterKind) (m types.Match, ok bool, err error) {
	if err := c.startOperation(ctx, padded(memory.WordSize, memory.WordSize, memory.WordSize)); err != nil {
		return m, false, err
	}
	defer c.endOperation()

	patternOut := c.scratch.allocate(memory.WordSize)
	startOut := c.scratch.allocate(memory.WordSize)
	endOut := c.scratch.allocate(memory.WordSize)

	_, nextName, _ := kind.exports()
	v, err := c.call(ctx, nextName, uint64(it), uint64(patternOut), uint64(startOut), uint64(endOut))
	if err != nil {
		return m, false, err
	}
	if v == 0 {
		return m, false, c.lastError(ctx)
	}

	mem := c.t.Memory()
	pattern, ok1 := mem.ReadUint32Le(patternOut)
	start, ok2 := mem.ReadUint32Le(startOut)
	end, ok3 := mem.ReadUint32Le(endOut)
	if !ok1 || !ok2 || !ok3 {
		return m, false, errFailedRead
	}
	return types.Match{Pattern: int(pattern), Start: int(start), End: int(end)}, true, nil
}

// CloseIterator releases an iterator.
func (c *Client) CloseIterator(ctx context.Context, it Handle, kind IterKind) error {
	if err := c.startOperation(ctx, 0); err != nil {
		return err
	}
	defer c.endOperation()
	_, _, closeName := kind.exports()
	_, err := c.callChecked(ctx, closeName, uint64(it))
	return err
}
