package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/module"
)

// Wazero runs the compiled module (see ./wasm) in a wazero runtime.
// A trap leaves the instance in an undefined state; callers should Close it
// and start a new one.
type Wazero struct {
	rt  wazero.Runtime
	mod api.Module
	fns map[string]api.Function
}

// NewWazero compiles and instantiates a module binary. The binary must be a
// WASI reactor exporting every function in module.Signatures.
func NewWazero(ctx context.Context, wasm []byte) (*Wazero, error) {
	rt := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiating wasi: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("compiling module: %w", err)
	}

	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions("_initialize")
	mod, err := rt.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiating module: %w", err)
	}

	fns := make(map[string]api.Function, len(module.Signatures))
	for _, name := range module.ExportNames() {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("module does not export %q", name)
		}
		sig := module.Signatures[name]
		def := fn.Definition()
		if len(def.ParamTypes()) != sig.Params || len(def.ResultTypes()) != sig.Results {
			rt.Close(ctx)
			return nil, fmt.Errorf("export %q has signature %d->%d, want %d->%d",
				name, len(def.ParamTypes()), len(def.ResultTypes()), sig.Params, sig.Results)
		}
		fns[name] = fn
	}

	return &Wazero{rt: rt, mod: mod, fns: fns}, nil
}

func (w *Wazero) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	if _, err := checkArity(name, params); err != nil {
		return nil, err
	}
	results, err := w.fns[name].Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("%s trapped: %w", name, err)
	}
	return results, nil
}

func (w *Wazero) Memory() memory.Memory { return w.mod.Memory() }

func (w *Wazero) Close(ctx context.Context) error { return w.rt.Close(ctx) }
