package enum

import (
	"context"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Callback receives one piece of content and the source it came from.
// Callbacks may run concurrently.
type Callback func(content []byte, src types.Source) error

// Enumerator discovers content to scan.
type Enumerator interface {
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for enumeration.
type Config struct {
	// Root is the file or directory to enumerate.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links to files.
	FollowSymlinks bool

	// Readers is the number of parallel file readers (0 = one per CPU).
	Readers int
}
