package wasm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/spindle-dev/spindle-host-sdk/capability"
)

// moduleInfo is the JSON payload returned by the guest "describe" export.
type moduleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Capability  string `json:"capability"`
}

// processResult is the JSON envelope returned by the guest "process" export.
// Output carries the produced bytes base64-encoded; a non-empty Error means
// the guest failed.
type processResult struct {
	Output []byte `json:"output"`
	Error  string `json:"error"`
}

// ModuleProvider adapts an instantiated WASM module to the provider
// contract. The guest must export "describe" and "process"; "accepts" is
// optional and defaults to accepting every input.
//
// A module instance serializes its own calls; use one provider per goroutine
// or guard calls externally.
type ModuleProvider struct {
	module api.Module
	info   moduleInfo
}

var _ capability.ByteProvider = (*ModuleProvider)(nil)

// Describe returns the guest's self-description.
func (p *ModuleProvider) Describe() string {
	if p.info.Description != "" {
		return p.info.Description
	}
	return p.info.Name
}

// Capability returns the capability name the guest declares.
func (p *ModuleProvider) Capability() string {
	return p.info.Capability
}

// Accepts asks the guest whether it can handle the input. A guest without an
// "accepts" export accepts everything; a guest call failure counts as a
// decline.
func (p *ModuleProvider) Accepts(input []byte) bool {
	fn := p.module.ExportedFunction("accepts")
	if fn == nil {
		return true
	}

	// Accepts is a pure probe; a background context keeps it independent of
	// any one request's deadline.
	packed, err := p.callPacked(context.Background(), fn, input)
	if err != nil {
		return false
	}
	return packed != 0
}

// Process hands the input to the guest and returns its output.
func (p *ModuleProvider) Process(ctx context.Context, input []byte) ([]byte, error) {
	fn := p.module.ExportedFunction("process")
	if fn == nil {
		return nil, &capability.ProcessingError{
			Provider: p.Describe(),
			Err:      errors.New("guest does not export process"),
		}
	}

	packed, err := p.callPacked(ctx, fn, input)
	if err != nil {
		return nil, &capability.ProcessingError{Provider: p.Describe(), Err: err}
	}

	var result processResult
	if err := p.unmarshalPacked(packed, &result); err != nil {
		return nil, &capability.ProcessingError{Provider: p.Describe(), Err: err}
	}

	if result.Error != "" {
		return nil, &capability.ProcessingError{
			Provider: p.Describe(),
			Err:      errors.New(result.Error),
		}
	}

	return result.Output, nil
}

// Close releases the underlying module instance.
func (p *ModuleProvider) Close(ctx context.Context) error {
	return p.module.Close(ctx)
}

// loadDescription calls the guest "describe" export.
func (p *ModuleProvider) loadDescription(ctx context.Context) error {
	fn := p.module.ExportedFunction("describe")
	if fn == nil {
		return fmt.Errorf("guest does not export describe")
	}

	packed, err := p.callPacked(ctx, fn, nil)
	if err != nil {
		return fmt.Errorf("describe failed: %w", err)
	}

	if err := p.unmarshalPacked(packed, &p.info); err != nil {
		return fmt.Errorf("invalid describe payload: %w", err)
	}
	return nil
}

// callPacked invokes a guest function, passing input through guest memory
// when present.
func (p *ModuleProvider) callPacked(ctx context.Context, fn api.Function, input []byte) (uint64, error) {
	var packedInput uint64
	if len(input) > 0 {
		allocate := p.module.ExportedFunction("allocate")
		if allocate == nil {
			return 0, fmt.Errorf("guest does not export allocate")
		}
		res, err := allocate.Call(ctx, uint64(len(input)))
		if err != nil {
			return 0, fmt.Errorf("allocate failed: %w", err)
		}
		ptr := res[0]

		//nolint:gosec // WASM pointers are 32-bit
		if !p.module.Memory().Write(uint32(ptr), input) {
			return 0, fmt.Errorf("failed to write input to guest memory")
		}
		packedInput = packPtrLen(uint32(ptr), uint32(len(input)))
	}

	res, err := fn.Call(ctx, packedInput)
	if err != nil {
		return 0, fmt.Errorf("guest call failed: %w", err)
	}
	return res[0], nil
}

// unmarshalPacked reads JSON from a packed ptr+len and unmarshals it.
func (p *ModuleProvider) unmarshalPacked(packed uint64, v any) error {
	ptr, length := unpackPtrLen(packed)
	if length == 0 {
		return nil
	}

	data, ok := p.module.Memory().Read(ptr, length)
	if !ok {
		return fmt.Errorf("failed to read result from guest memory")
	}

	return json.Unmarshal(data, v)
}

func packPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

func unpackPtrLen(packed uint64) (ptr, length uint32) {
	//nolint:gosec // WASM pointers and lengths are 32-bit
	return uint32(packed >> 32), uint32(packed)
}
