package enum

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// CombinedEnumerator runs several enumerators in order and yields each
// file path at most once, so overlapping roots are not read twice.
type CombinedEnumerator struct {
	enumerators []Enumerator
}

// NewCombinedEnumerator wraps the provided enumerators.
func NewCombinedEnumerator(enumerators ...Enumerator) *CombinedEnumerator {
	return &CombinedEnumerator{enumerators: enumerators}
}

// ForPaths builds a CombinedEnumerator with one filesystem enumerator per
// root, sharing config otherwise.
func ForPaths(config Config, roots ...string) *CombinedEnumerator {
	enumerators := make([]Enumerator, 0, len(roots))
	for _, root := range roots {
		c := config
		c.Root = root
		enumerators = append(enumerators, NewFilesystemEnumerator(c))
	}
	return NewCombinedEnumerator(enumerators...)
}

// Enumerate runs each child enumerator in sequence.
func (c *CombinedEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	var mu sync.Mutex
	seen := make(map[string]bool)

	for _, e := range c.enumerators {
		err := e.Enumerate(ctx, func(content []byte, src types.Source) error {
			key := filepath.Clean(src.Path)
			mu.Lock()
			if seen[key] {
				mu.Unlock()
				return nil
			}
			seen[key] = true
			mu.Unlock()

			return callback(content, src)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
