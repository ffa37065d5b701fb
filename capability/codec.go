package capability

import (
	"context"
	"encoding/json"
	"fmt"
)

// ByteProvider is a provider operating on raw JSON payloads. WASM-packaged
// providers have this shape; JSONProvider bridges them to typed inputs.
type ByteProvider = Provider[[]byte, []byte]

// jsonProvider adapts a ByteProvider to a typed Provider by marshaling the
// input to JSON and unmarshaling the output.
type jsonProvider[I, O any] struct {
	inner ByteProvider
}

// JSONProvider wraps a byte-oriented provider into a typed one.
// Inputs must marshal to JSON; outputs must unmarshal from the provider's
// response payload.
func JSONProvider[I, O any](inner ByteProvider) Provider[I, O] {
	return &jsonProvider[I, O]{inner: inner}
}

func (p *jsonProvider[I, O]) Describe() string {
	return p.inner.Describe()
}

func (p *jsonProvider[I, O]) Accepts(input I) bool {
	payload, err := json.Marshal(input)
	if err != nil {
		return false
	}
	return p.inner.Accepts(payload)
}

func (p *jsonProvider[I, O]) Process(ctx context.Context, input I) (O, error) {
	var zero O

	payload, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("marshal input: %w", err)
	}

	raw, err := p.inner.Process(ctx, payload)
	if err != nil {
		// Provider errors pass through unchanged.
		return zero, err
	}

	var out O
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("unmarshal output: %w", err)
	}
	return out, nil
}
