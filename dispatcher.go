package hostlib

import (
	"context"
	"log/slog"

	"github.com/spindle-dev/spindle-host-sdk/policy"
	"github.com/spindle-dev/spindle-host-sdk/registry"
)

// Dispatcher selects and invokes the first provider, in registry order, that
// accepts a given input. Selection is never cached: every FindProvider call
// re-scans, so configuration changes are picked up on the next dispatch.
// Safe for concurrent use.
type Dispatcher[I, O any] struct {
	registry   *registry.Registry[I, O]
	policy     policy.Policy
	logger     *slog.Logger
	middleware []Middleware[I, O]
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption[I, O any] func(*Dispatcher[I, O])

// WithDispatchLogger sets the logger for skipped-entry diagnostics.
func WithDispatchLogger[I, O any](l *slog.Logger) DispatcherOption[I, O] {
	return func(d *Dispatcher[I, O]) {
		d.logger = l
	}
}

// WithPolicy restricts which providers may be selected. Denied providers are
// skipped exactly like non-accepting ones.
func WithPolicy[I, O any](p policy.Policy) DispatcherOption[I, O] {
	return func(d *Dispatcher[I, O]) {
		d.policy = p
	}
}

// WithMiddleware wraps provider invocation. Middleware executes in FIFO order
// (first registered wraps first, onion model).
func WithMiddleware[I, O any](mw ...Middleware[I, O]) DispatcherOption[I, O] {
	return func(d *Dispatcher[I, O]) {
		d.middleware = append(d.middleware, mw...)
	}
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher[I, O any](reg *registry.Registry[I, O], opts ...DispatcherOption[I, O]) *Dispatcher[I, O] {
	d := &Dispatcher[I, O]{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FindProvider returns the first provider, in registry order, that accepts
// the input. Entries that fail to construct are logged and skipped; they
// never change the outcome versus the same configuration without them.
// The second return is false when no candidate accepted the input, which is
// a valid empty result rather than a fault.
func (d *Dispatcher[I, O]) FindProvider(ctx context.Context, capabilityName string, input I) (registry.Resolved[I, O], bool) {
	for res, err := range d.registry.Load(ctx, capabilityName) {
		if err != nil {
			d.logger.Warn("skipping provider entry",
				"capability", capabilityName,
				"error", err)
			continue
		}

		if d.policy != nil && !d.policy.Check(capabilityName, res.ID) {
			continue
		}

		if res.Provider.Accepts(input) {
			return res, true
		}
	}
	return registry.Resolved[I, O]{}, false
}

// Dispatch invokes the selected provider on the input, through any configured
// middleware. The provider's own error is propagated unchanged: no retry, no
// fallback to later candidates.
func (d *Dispatcher[I, O]) Dispatch(ctx context.Context, selected registry.Resolved[I, O], input I) (O, error) {
	process := selected.Provider.Process
	for i := len(d.middleware) - 1; i >= 0; i-- {
		process = d.middleware[i](process)
	}
	return process(ctx, input)
}

// Handle finds and invokes a provider in one call. It returns a
// *NoProviderError matching ErrNoProvider when no candidate accepts the
// input.
func (d *Dispatcher[I, O]) Handle(ctx context.Context, capabilityName string, input I) (O, error) {
	selected, ok := d.FindProvider(ctx, capabilityName, input)
	if !ok {
		var zero O
		return zero, &NoProviderError{Capability: capabilityName}
	}
	return d.Dispatch(ctx, selected, input)
}
