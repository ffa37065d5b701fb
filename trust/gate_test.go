package trust

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
)

type fakePrompter struct {
	interactive bool
	trusted     bool
	always      bool
	err         error
	prompted    bool
}

func (f *fakePrompter) IsInteractive() bool { return f.interactive }

func (f *fakePrompter) PromptForArtifact(a *artifact.Artifact) (bool, bool, error) {
	f.prompted = true
	return f.trusted, f.always, f.err
}

func (f *fakePrompter) FormatNonInteractiveError(a *artifact.Artifact) error {
	return errors.New("non-interactive")
}

func testArtifact(t *testing.T) *artifact.Artifact {
	t.Helper()
	ref, err := artifact.ParseReference("ghcr.io/spindle-dev/providers/thumbnail-png:1.0.2")
	if err != nil {
		t.Fatalf("ParseReference failed: %v", err)
	}
	digest, err := artifact.ComputeDigestSHA256(strings.NewReader("module bytes"))
	if err != nil {
		t.Fatalf("ComputeDigestSHA256 failed: %v", err)
	}
	return artifact.New(ref, digest, artifact.Metadata{Name: "thumbnail-png", Capability: "thumbnail.render"})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(WithPath(filepath.Join(t.TempDir(), "trusted.yaml")))
}

func TestGate_Approve(t *testing.T) {
	ctx := context.Background()
	a := testArtifact(t)

	t.Run("PermissiveAllowsEverything", func(t *testing.T) {
		prompter := &fakePrompter{interactive: true}
		gate := NewGate(
			WithStore(newTestStore(t)),
			WithPrompter(prompter),
			WithLevel(LevelPermissive),
			WithLogger(testLogger()),
		)

		if err := gate.Approve(ctx, a); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		if prompter.prompted {
			t.Error("permissive mode should not prompt")
		}
	})

	t.Run("StrictDeniesUnknown", func(t *testing.T) {
		gate := NewGate(
			WithStore(newTestStore(t)),
			WithPrompter(&fakePrompter{interactive: true}),
			WithLevel(LevelStrict),
			WithLogger(testLogger()),
		)

		err := gate.Approve(ctx, a)
		if !errors.Is(err, artifact.ErrNotTrusted) {
			t.Errorf("expected ErrNotTrusted, got %v", err)
		}
	})

	t.Run("StoredApprovalSkipsPrompt", func(t *testing.T) {
		store := newTestStore(t)
		set := &Set{}
		set.Add(a.Reference().Name(), a.Digest().String())
		if err := store.Save(set); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		prompter := &fakePrompter{interactive: true}
		gate := NewGate(WithStore(store), WithPrompter(prompter), WithLogger(testLogger()))

		if err := gate.Approve(ctx, a); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		if prompter.prompted {
			t.Error("stored approval should not prompt")
		}
	})

	t.Run("DigestChangeRejected", func(t *testing.T) {
		store := newTestStore(t)
		set := &Set{}
		set.Add(a.Reference().Name(), "sha256:0ld")
		if err := store.Save(set); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		gate := NewGate(
			WithStore(store),
			WithPrompter(&fakePrompter{interactive: true, trusted: true}),
			WithLogger(testLogger()),
		)

		err := gate.Approve(ctx, a)
		if !errors.Is(err, artifact.ErrNotTrusted) {
			t.Errorf("expected ErrNotTrusted on digest change, got %v", err)
		}
	})

	t.Run("PromptGrantsSession", func(t *testing.T) {
		store := newTestStore(t)
		prompter := &fakePrompter{interactive: true, trusted: true}
		gate := NewGate(WithStore(store), WithPrompter(prompter), WithLogger(testLogger()))

		if err := gate.Approve(ctx, a); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		if !prompter.prompted {
			t.Error("expected prompt")
		}

		// Session-only grants are not persisted.
		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.IsTrusted(a.Reference().Name(), a.Digest().String()) {
			t.Error("session grant should not be saved")
		}
	})

	t.Run("PromptAlwaysPersists", func(t *testing.T) {
		store := newTestStore(t)
		prompter := &fakePrompter{interactive: true, trusted: true, always: true}
		gate := NewGate(WithStore(store), WithPrompter(prompter), WithLogger(testLogger()))

		if err := gate.Approve(ctx, a); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}

		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !loaded.IsTrusted(a.Reference().Name(), a.Digest().String()) {
			t.Error("always grant should be saved")
		}
	})

	t.Run("PromptDenied", func(t *testing.T) {
		gate := NewGate(
			WithStore(newTestStore(t)),
			WithPrompter(&fakePrompter{interactive: true, trusted: false}),
			WithLogger(testLogger()),
		)

		err := gate.Approve(ctx, a)
		if !errors.Is(err, artifact.ErrNotTrusted) {
			t.Errorf("expected ErrNotTrusted, got %v", err)
		}
	})

	t.Run("NonInteractiveFails", func(t *testing.T) {
		gate := NewGate(
			WithStore(newTestStore(t)),
			WithPrompter(&fakePrompter{interactive: false}),
			WithLogger(testLogger()),
		)

		if err := gate.Approve(ctx, a); err == nil {
			t.Error("non-interactive mode should fail for unknown artifacts")
		}
	})
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	// Missing file yields an empty set.
	set, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if set.IsTrusted("anything", "sha256:abc") {
		t.Error("empty store should trust nothing")
	}

	set.Add("thumbnail-png", "sha256:abc")
	if err := store.Save(set); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.IsTrusted("thumbnail-png", "sha256:abc") {
		t.Error("saved approval should survive a round trip")
	}
	if loaded.IsTrusted("thumbnail-png", "sha256:other") {
		t.Error("different digest should not be trusted")
	}
}
