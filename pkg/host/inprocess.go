package host

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/module"
)

// InProcess runs the module in the host process over a memory.Arena. It
// behaves like a wasm instance: a panic inside an export is reported as a
// trap error from Call.
type InProcess struct {
	mod     *module.Module
	exports map[string]module.Func
}

// NewInProcess creates a module over a fresh arena limited to limit bytes
// (zero selects memory.DefaultArenaLimit).
func NewInProcess(limit uint32, opts ...module.Option) *InProcess {
	return NewInProcessModule(module.New(memory.NewArena(limit), opts...))
}

// NewInProcessModule wraps an existing module.
func NewInProcessModule(mod *module.Module) *InProcess {
	return &InProcess{mod: mod, exports: mod.Exports()}
}

// Module returns the wrapped module.
func (p *InProcess) Module() *module.Module { return p.mod }

func (p *InProcess) Call(ctx context.Context, name string, params ...uint64) (results []uint64, err error) {
	sig, err := checkArity(name, params)
	if err != nil {
		return nil, err
	}
	fn := p.exports[name]

	stack := make([]uint64, max(sig.Params, sig.Results))
	copy(stack, params)

	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = fmt.Errorf("%s trapped: %w", name, rerr)
			} else {
				err = fmt.Errorf("%s trapped: %v", name, r)
			}
			results = nil
		}
	}()
	fn(ctx, stack)
	return stack[:sig.Results], nil
}

func (p *InProcess) Memory() memory.Memory { return p.mod.Memory() }

func (p *InProcess) Close(context.Context) error { return nil }
