package artifact

import (
	"context"
	"io"
	"time"
)

// Pulled is a pulled artifact together with its module binary stream.
type Pulled struct {
	Artifact *Artifact
	Module   io.ReadCloser
}

// Close releases the module stream.
func (p *Pulled) Close() error {
	if p.Module != nil {
		return p.Module.Close()
	}
	return nil
}

// Repository manages persistent local storage of artifacts.
type Repository interface {
	// Find retrieves a cached artifact by reference. The second return is
	// the path to the stored module binary.
	Find(ctx context.Context, ref Reference) (*Artifact, string, error)

	// Store persists an artifact with its module binary and returns the
	// path to the stored file.
	Store(ctx context.Context, a *Artifact, module io.Reader) (string, error)

	// List returns all cached artifacts.
	List(ctx context.Context) ([]*Artifact, error)

	// Delete removes an artifact from the cache.
	Delete(ctx context.Context, ref Reference) error
}

// Registry provides access to remote artifact registries.
type Registry interface {
	// Pull downloads an artifact from the registry.
	Pull(ctx context.Context, ref Reference) (*Pulled, error)

	// Resolve resolves a reference to its content digest without pulling.
	Resolve(ctx context.Context, ref Reference) (Digest, error)
}

// AuthProvider supplies registry credentials.
type AuthProvider interface {
	GetCredentials(ctx context.Context, registry string) (username, password string, err error)
}

// SignatureResult describes a verified signature.
type SignatureResult struct {
	Verified        bool
	Signer          string
	SignedAt        time.Time
	TransparencyLog string
}

// Verifier checks artifact signatures.
type Verifier interface {
	VerifySignature(ctx context.Context, ref Reference) (*SignatureResult, error)
}
