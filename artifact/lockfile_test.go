package artifact_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
)

func TestLockfile_Add(t *testing.T) {
	lf := artifact.NewLockfile()

	err := lf.Add("thumbnail-png", artifact.Lock{
		Requested: ">= 1.0",
		Resolved:  "1.0.2",
		Source:    "ghcr.io/spindle-dev/providers/thumbnail-png:1.0.2",
		Digest:    "sha256:abcd",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if lf.Count() != 1 {
		t.Errorf("Count() = %d, want 1", lf.Count())
	}

	got := lf.Get("thumbnail-png")
	if got == nil {
		t.Fatal("Get returned nil for existing entry")
	}
	if got.Resolved != "1.0.2" {
		t.Errorf("Resolved = %q, want 1.0.2", got.Resolved)
	}

	if lf.Get("missing") != nil {
		t.Error("Get should return nil for missing entry")
	}
}

func TestLockfile_AddRequiresDigest(t *testing.T) {
	lf := artifact.NewLockfile()
	err := lf.Add("thumbnail-png", artifact.Lock{Resolved: "1.0.2"})
	if err == nil {
		t.Error("Add should reject entries without a digest")
	}
}

func TestLockfile_Validate(t *testing.T) {
	lf := artifact.NewLockfile()
	if err := lf.Validate(); err != nil {
		t.Errorf("empty lockfile should validate: %v", err)
	}

	lf.Artifacts["broken"] = artifact.Lock{Resolved: "1.0"}
	if err := lf.Validate(); err == nil {
		t.Error("Validate should reject entries without a digest")
	}

	lf.Artifacts["broken"] = artifact.Lock{Resolved: "1.0", Digest: "sha256:abcd"}
	lf.Generated = time.Time{}
	if err := lf.Validate(); err == nil {
		t.Error("Validate should require generated timestamp when entries exist")
	}
}

func TestFileLockfileRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := artifact.NewFileLockfileRepository()
	path := filepath.Join(t.TempDir(), "spindle.lock")

	lf := artifact.NewLockfile()
	if err := lf.Add("thumbnail-png", artifact.Lock{
		Requested: "latest",
		Resolved:  "1.0.2",
		Source:    "ghcr.io/spindle-dev/providers/thumbnail-png:1.0.2",
		Digest:    "sha256:abcd",
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := repo.Save(ctx, lf, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err := repo.Exists(ctx, path)
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v; want true, nil", exists, err)
	}

	loaded, err := repo.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Count() != 1 {
		t.Fatalf("loaded Count() = %d, want 1", loaded.Count())
	}
	got := loaded.Get("thumbnail-png")
	if got == nil || got.Digest != "sha256:abcd" {
		t.Errorf("loaded entry = %+v", got)
	}
}

func TestFileLockfileRepository_LoadMissing(t *testing.T) {
	repo := artifact.NewFileLockfileRepository()
	path := filepath.Join(t.TempDir(), "does", "not", "exist.lock")

	lf, err := repo.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if lf != nil {
		t.Error("Load of missing file should return nil lockfile")
	}
}
