package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

// Lockfile pins resolved artifact versions and digests so that repeated
// installs produce identical provider sets.
//
// Invariants:
// - Each entry must have a digest
// - Generated timestamp must be set when entries exist
type Lockfile struct {
	Generated time.Time       `yaml:"generated"`
	Artifacts map[string]Lock `yaml:"artifacts"`
	Version   int             `yaml:"lockfile_version"`
}

// Lock pins a single artifact. Immutable after creation.
type Lock struct {
	Fetched   time.Time `yaml:"fetched,omitempty"`
	Requested string    `yaml:"requested"`
	Resolved  string    `yaml:"resolved"`
	Source    string    `yaml:"source"`
	Digest    string    `yaml:"sha256"`
}

// NewLockfile creates an empty lockfile at the current format version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version:   1,
		Generated: time.Now().UTC(),
		Artifacts: make(map[string]Lock),
	}
}

// Add records a lock entry. The digest is required.
func (l *Lockfile) Add(name string, lock Lock) error {
	if lock.Digest == "" {
		return fmt.Errorf("artifact %q: digest is required", name)
	}
	if l.Artifacts == nil {
		l.Artifacts = make(map[string]Lock)
	}
	l.Artifacts[name] = lock
	return nil
}

// Get retrieves a lock entry by name. Returns nil if not found.
func (l *Lockfile) Get(name string) *Lock {
	if l.Artifacts == nil {
		return nil
	}
	if lock, ok := l.Artifacts[name]; ok {
		return &lock
	}
	return nil
}

// Count returns the number of locked artifacts.
func (l *Lockfile) Count() int {
	return len(l.Artifacts)
}

// Validate checks lockfile invariants.
func (l *Lockfile) Validate() error {
	if l.Count() > 0 && l.Generated.IsZero() {
		return fmt.Errorf("generated timestamp is required")
	}
	for name, lock := range l.Artifacts {
		if lock.Digest == "" {
			return fmt.Errorf("artifact %q: digest is required", name)
		}
	}
	return nil
}

// FileLockfileRepository persists lockfiles as YAML on the local filesystem.
type FileLockfileRepository struct{}

// NewFileLockfileRepository creates a new FileLockfileRepository.
func NewFileLockfileRepository() *FileLockfileRepository {
	return &FileLockfileRepository{}
}

// Load reads a lockfile from the given path. A missing file is not an
// error; it returns (nil, nil).
func (r *FileLockfileRepository) Load(ctx context.Context, path string) (*Lockfile, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	file, err := root.Open(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open lockfile %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	var lock Lockfile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&lock); err != nil {
		return nil, fmt.Errorf("decoding lockfile YAML: %w", err)
	}

	if err := lock.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lockfile: %w", err)
	}

	return &lock, nil
}

// Save writes a lockfile to the given path, creating parent directories
// as needed.
func (r *FileLockfileRepository) Save(ctx context.Context, lockfile *Lockfile, path string) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("opening directory for write %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	base := filepath.Base(path)

	file, err := root.OpenFile(base, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating lockfile %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	defer func() { _ = encoder.Close() }()

	if err := encoder.Encode(lockfile); err != nil {
		return fmt.Errorf("encoding lockfile: %w", err)
	}

	return nil
}

// Exists reports whether a lockfile exists at the given path.
func (r *FileLockfileRepository) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
