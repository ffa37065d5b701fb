package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const moduleFileName = "module.wasm"

// FSRepository implements Repository on the local filesystem.
// Layout: <root>/<reference>/{module.wasm, metadata.json, digest.txt}.
type FSRepository struct {
	root string
}

// NewFSRepository creates a filesystem-backed repository rooted at root.
// An empty root defaults to ~/.spindle/artifacts.
func NewFSRepository(root string) (*FSRepository, error) {
	if root == "" {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, ".spindle", "artifacts")
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &FSRepository{root: root}, nil
}

// Find retrieves an artifact from the cache.
func (r *FSRepository) Find(ctx context.Context, ref Reference) (*Artifact, string, error) {
	dir, err := r.artifactDir(ref)
	if err != nil {
		return nil, "", err
	}

	modulePath := filepath.Join(dir, moduleFileName)
	if _, err := os.Stat(modulePath); err != nil {
		return nil, "", &NotFoundError{Reference: ref}
	}

	metadata, err := r.loadMetadata(dir)
	if err != nil {
		return nil, "", err
	}

	digest, err := r.loadDigest(dir)
	if err != nil {
		return nil, "", err
	}

	return New(ref, digest, metadata), modulePath, nil
}

// Store persists an artifact and its module binary.
func (r *FSRepository) Store(ctx context.Context, a *Artifact, module io.Reader) (string, error) {
	dir, err := r.artifactDir(a.Reference())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	modulePath := filepath.Join(dir, moduleFileName)
	f, err := os.Create(filepath.Clean(modulePath))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, module); err != nil {
		return "", fmt.Errorf("write module: %w", err)
	}

	if err := r.saveMetadata(dir, a.Metadata()); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "digest.txt"), []byte(a.Digest().String()), 0o600); err != nil {
		return "", err
	}

	return modulePath, nil
}

// List returns all cached artifacts.
func (r *FSRepository) List(ctx context.Context) ([]*Artifact, error) {
	var artifacts []*Artifact

	err := filepath.Walk(r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Name() != moduleFileName {
			return nil
		}

		rel, err := filepath.Rel(r.root, filepath.Dir(path))
		if err != nil {
			return err
		}
		ref, err := ParseReference(filepath.ToSlash(rel))
		if err != nil {
			return nil //nolint:nilerr // skip entries with unparsable paths
		}

		a, _, err := r.Find(ctx, ref)
		if err == nil {
			artifacts = append(artifacts, a)
		}
		return nil
	})

	return artifacts, err
}

// Delete removes an artifact from the cache.
func (r *FSRepository) Delete(ctx context.Context, ref Reference) error {
	dir, err := r.artifactDir(ref)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// artifactDir maps a reference to its cache directory, rejecting references
// that would escape the cache root.
func (r *FSRepository) artifactDir(ref Reference) (string, error) {
	refStr := ref.String()

	if filepath.IsAbs(refStr) {
		return "", fmt.Errorf("absolute paths not allowed in artifact reference %q", refStr)
	}

	cleanRoot := filepath.Clean(r.root)
	cleanPath := filepath.Clean(filepath.Join(r.root, refStr))

	if !strings.HasPrefix(cleanPath, cleanRoot+string(os.PathSeparator)) && cleanPath != cleanRoot {
		return "", fmt.Errorf("path traversal detected for artifact reference %q", refStr)
	}

	return cleanPath, nil
}

func (r *FSRepository) loadMetadata(dir string) (Metadata, error) {
	data, err := os.ReadFile(filepath.Clean(filepath.Join(dir, "metadata.json")))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func (r *FSRepository) saveMetadata(dir string, meta Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o600)
}

func (r *FSRepository) loadDigest(dir string) (Digest, error) {
	data, err := os.ReadFile(filepath.Clean(filepath.Join(dir, "digest.txt")))
	if err != nil {
		return Digest{}, err
	}
	return ParseDigest(strings.TrimSpace(string(data)))
}
