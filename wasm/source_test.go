package wasm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spindle-dev/spindle-host-sdk/registry"
)

func testExecutor(t *testing.T) *Executor {
	t.Helper()
	ctx := context.Background()
	e, err := NewExecutor(ctx, WithExecutorLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	t.Cleanup(func() { _ = e.Close(ctx) })
	return e
}

func TestSource_EntriesOrder(t *testing.T) {
	src := NewSource("wasm", testExecutor(t))
	src.AddModule("thumbnail.render", "png", "/modules/png.wasm")
	src.AddModule("thumbnail.render", "svg", "/modules/svg.wasm")
	src.AddModule("other.capability", "zip", "/modules/zip.wasm")

	entries, err := src.Entries(context.Background(), "thumbnail.render")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "png" || entries[1].ID != "svg" {
		t.Errorf("entry order = [%s, %s], want [png, svg]", entries[0].ID, entries[1].ID)
	}
	if entries[0].Source != "wasm" {
		t.Errorf("entry source = %q, want wasm", entries[0].Source)
	}
}

func TestSource_MissingModuleFailsAtConstruction(t *testing.T) {
	src := NewSource("wasm", testExecutor(t))
	src.AddModule("thumbnail.render", "ghost", filepath.Join(t.TempDir(), "missing.wasm"))

	entries, err := src.Entries(context.Background(), "thumbnail.render")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	// Enumeration succeeds; the failure is paid at construction time.
	_, err = entries[0].Construct()
	if err == nil {
		t.Fatal("Construct should fail for a missing module file")
	}
}

func TestSource_ArtifactWithoutService(t *testing.T) {
	src := NewSource("wasm", testExecutor(t))
	src.AddArtifact("thumbnail.render", "remote", "ghcr.io/spindle-dev/providers/thumbnail-png:1.0.2", "")

	entries, err := src.Entries(context.Background(), "thumbnail.render")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}

	_, err = entries[0].Construct()
	if err == nil {
		t.Fatal("Construct should fail without an artifact service")
	}
}

func TestSource_FaultIsolationThroughRegistry(t *testing.T) {
	ctx := context.Background()
	src := NewSource("wasm", testExecutor(t))
	src.AddModule("thumbnail.render", "broken", filepath.Join(t.TempDir(), "missing.wasm"))

	reg := registry.New(
		registry.WithSources[[]byte, []byte](src),
		registry.WithLogger[[]byte, []byte](slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	var confErrs int
	for _, err := range reg.Load(ctx, "thumbnail.render") {
		if err == nil {
			t.Fatal("expected only configuration errors")
		}
		if !errors.Is(err, registry.ErrProviderConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
		confErrs++
	}
	if confErrs != 1 {
		t.Errorf("got %d configuration errors, want 1", confErrs)
	}
}
