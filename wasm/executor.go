// Package wasm hosts WASM-packaged providers. Modules speak a packed
// pointer+length JSON ABI: every guest export takes and returns a uint64
// whose high 32 bits are a pointer into guest memory and whose low 32 bits
// are a byte length.
package wasm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// HostModuleName is the import namespace guests use for host functions.
const HostModuleName = "spindle"

// Executor owns the WASM runtime and the host functions exposed to guests.
type Executor struct {
	runtime wazero.Runtime
	cache   wazero.CompilationCache
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithCompilationCache configures the executor with a compilation cache.
// Caching compiled modules across executors avoids recompiling the same
// binary.
func WithCompilationCache(cache wazero.CompilationCache) Option {
	return func(e *Executor) {
		e.cache = cache
	}
}

// WithExecutorLogger sets the logger guest log messages are forwarded to.
func WithExecutorLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	config := wazero.NewRuntimeConfig()
	if e.cache != nil {
		config = config.WithCompilationCache(e.cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, config)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// registerHostFunctions registers the host module with the runtime.
func (e *Executor) registerHostFunctions(ctx context.Context) error {
	_, err := e.runtime.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(logMessageFunc(e.logger), logMessageParams, logMessageResults).
		Export("log_message").
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate host module %q: %w", HostModuleName, err)
	}
	return nil
}

// Load instantiates a WASM module and wraps it as a provider.
func (e *Executor) Load(ctx context.Context, moduleBytes []byte) (*ModuleProvider, error) {
	mod, err := e.runtime.Instantiate(ctx, moduleBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	p := &ModuleProvider{module: mod}
	if err := p.loadDescription(ctx); err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}

	return p, nil
}

// Close releases resources held by the executor, including all loaded
// modules.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
