// Package host drives the matcher module from the host side of the
// linear-memory boundary.
//
// A Transport executes exports of one module instance. Client layers the
// typed protocol on top: it writes inputs into module memory, calls the
// exports, reads results back and turns zero returns into errors.
package host

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/module"
)

// Transport calls exports of a single module instance. Implementations are
// not required to be safe for concurrent use; Client serializes its calls.
type Transport interface {
	// Call invokes the named export and returns its results.
	Call(ctx context.Context, name string, params ...uint64) ([]uint64, error)

	// Memory returns the instance's linear memory.
	Memory() memory.Memory

	// Close releases the instance.
	Close(ctx context.Context) error
}

func checkArity(name string, params []uint64) (module.Signature, error) {
	sig, ok := module.Signatures[name]
	if !ok {
		return sig, fmt.Errorf("unknown export %q", name)
	}
	if len(params) != sig.Params {
		return sig, fmt.Errorf("export %q takes %d params, got %d", name, sig.Params, len(params))
	}
	return sig, nil
}
