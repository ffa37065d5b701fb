package capability

import (
	"context"
	"errors"
	"testing"
)

func TestProviderFunc(t *testing.T) {
	p := ProviderFunc[string, string]{
		Description: "upper-caser",
		AcceptsFunc: func(in string) bool { return in != "" },
		ProcessFunc: func(ctx context.Context, in string) (string, error) {
			return in + "!", nil
		},
	}

	if p.Describe() != "upper-caser" {
		t.Errorf("unexpected description: %s", p.Describe())
	}
	if p.Accepts("") {
		t.Error("expected empty input to be rejected")
	}
	if !p.Accepts("x") {
		t.Error("expected non-empty input to be accepted")
	}

	out, err := p.Process(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out != "hi!" {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestProviderFuncNilAcceptsAcceptsEverything(t *testing.T) {
	p := ProviderFunc[int, int]{
		ProcessFunc: func(ctx context.Context, in int) (int, error) { return in, nil },
	}
	if !p.Accepts(42) {
		t.Error("nil AcceptsFunc should accept any input")
	}
}

func TestProcessingErrorMatching(t *testing.T) {
	cause := errors.New("decode failed")
	err := &ProcessingError{Provider: "png-renderer", Err: cause}

	if !errors.Is(err, ErrProcessing) {
		t.Error("expected errors.Is match against ErrProcessing")
	}
	if !errors.Is(err, cause) {
		t.Error("expected unwrap to reach the cause")
	}

	var pe *ProcessingError
	if !errors.As(err, &pe) || pe.Provider != "png-renderer" {
		t.Error("expected errors.As to recover provider name")
	}
}
