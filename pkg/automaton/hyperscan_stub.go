//go:build !cgo || !hyperscan

package automaton

import (
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// HyperscanAvailable reports whether the Hyperscan engine is compiled in.
func HyperscanAvailable() bool {
	return false
}

// newHyperscan stub for builds without Hyperscan (non-CGO or missing hyperscan tag).
func newHyperscan([][]byte, types.Config) (Automaton, error) {
	return nil, fmt.Errorf("%w: hyperscan engine requires CGO (build with CGO_ENABLED=1 and -tags=hyperscan)", types.ErrUnsupportedConfiguration)
}
