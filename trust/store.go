// Package trust handles trust decisions for unsigned provider artifacts:
// loads stored approvals, checks digests, prompts for missing decisions,
// persists them.
package trust

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Set records operator-approved artifact digests keyed by artifact name.
type Set struct {
	Artifacts map[string]string `yaml:"artifacts"`
}

// IsTrusted reports whether the named artifact is approved with exactly the
// given digest.
func (s *Set) IsTrusted(name, digest string) bool {
	if s == nil || s.Artifacts == nil {
		return false
	}
	stored, ok := s.Artifacts[name]
	return ok && stored == digest
}

// Add approves an artifact digest, replacing any previous approval.
func (s *Set) Add(name, digest string) {
	if s.Artifacts == nil {
		s.Artifacts = make(map[string]string)
	}
	s.Artifacts[name] = digest
}

// Store persists trust decisions.
type Store interface {
	Load() (*Set, error)
	Save(*Set) error
	ConfigPath() string
}

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     filepath.Join(os.Getenv("HOME"), ".spindle", "trusted.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the trust file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the file permissions for the trust file.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the directory permissions for the trust directory.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore provides file-based persistence for trust decisions.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load retrieves all trust decisions.
func (s *FileStore) Load() (*Set, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return &Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trust store: %w", err)
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse trust store: %w", err)
	}
	return &set, nil
}

// Save persists the trust decisions.
func (s *FileStore) Save(set *Set) error {
	if set == nil {
		set = &Set{}
	}

	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal trust set: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create trust store directory: %w", err)
	}

	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write trust store: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the backing store.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}
