package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// TrustGate decides whether an artifact without a verified signature may be
// loaded. Implementations typically consult a trust store or prompt the
// operator.
type TrustGate interface {
	// Approve returns nil when the artifact may be loaded. A rejection is
	// reported as a NotTrustedError.
	Approve(ctx context.Context, a *Artifact) error
}

// Service orchestrates artifact acquisition: resolution through the resolver
// chain, digest verification against the lockfile, signature verification and
// trust gating.
type Service struct {
	resolver       Resolver
	repository     Repository
	verifier       Verifier
	trustGate      TrustGate
	requireSigning bool
	logger         *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// NewService creates an artifact service. Resolver and repository are
// required dependencies.
func NewService(resolver Resolver, repository Repository, opts ...ServiceOption) *Service {
	s := &Service{
		resolver:   resolver,
		repository: repository,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithVerifier sets the signature verifier.
func WithVerifier(v Verifier) ServiceOption {
	return func(s *Service) { s.verifier = v }
}

// WithTrustGate sets the gate consulted for unsigned artifacts.
func WithTrustGate(g TrustGate) ServiceOption {
	return func(s *Service) { s.trustGate = g }
}

// WithRequireSigning makes signature verification mandatory.
func WithRequireSigning(require bool) ServiceOption {
	return func(s *Service) { s.requireSigning = require }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// Acquire is the main use case for obtaining a provider artifact. It resolves
// the reference, enforces the expected digest when one is given (lockfile
// pinning), verifies the signature or consults the trust gate, and returns
// the path to the module binary.
func (s *Service) Acquire(ctx context.Context, ref Reference, expected Digest) (*Artifact, string, error) {
	a, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("artifact resolution failed: %w", err)
	}

	if !expected.IsZero() {
		if err := a.VerifyIntegrity(expected); err != nil {
			return nil, "", fmt.Errorf("integrity verification failed: %w", err)
		}
	}

	if err := s.checkTrust(ctx, a); err != nil {
		return nil, "", err
	}

	_, modulePath, err := s.repository.Find(ctx, a.Reference())
	if err != nil {
		return nil, "", fmt.Errorf("failed to locate module binary: %w", err)
	}

	return a, modulePath, nil
}

// checkTrust verifies the signature when a verifier is configured, falling
// back to the trust gate for unsigned artifacts.
func (s *Service) checkTrust(ctx context.Context, a *Artifact) error {
	if s.verifier != nil {
		result, err := s.verifier.VerifySignature(ctx, a.Reference())
		if err == nil && result.Verified {
			s.logger.Info("artifact signature verified",
				"artifact", a.Reference().String(),
				"signer", result.Signer,
				"signed_at", result.SignedAt)
			return nil
		}
		if s.requireSigning {
			if err != nil {
				return fmt.Errorf("signature verification failed: %w", err)
			}
			return &NotTrustedError{Reference: a.Reference(), Reason: "signature not verified"}
		}
		if err != nil {
			s.logger.Debug("signature verification failed, consulting trust gate",
				"artifact", a.Reference().String(),
				"error", err)
		}
	} else if s.requireSigning {
		return &NotTrustedError{Reference: a.Reference(), Reason: "signing required but no verifier configured"}
	}

	if s.trustGate != nil {
		return s.trustGate.Approve(ctx, a)
	}
	return nil
}

// UpdateLock records the acquired artifact in the lockfile.
func (s *Service) UpdateLock(lockfile *Lockfile, requested string, a *Artifact) error {
	return lockfile.Add(a.Reference().Name(), Lock{
		Fetched:   time.Now().UTC(),
		Requested: requested,
		Resolved:  a.Reference().Version(),
		Source:    a.Reference().String(),
		Digest:    a.Digest().String(),
	})
}

// ListCached returns all artifacts in the local cache.
func (s *Service) ListCached(ctx context.Context) ([]*Artifact, error) {
	return s.repository.List(ctx)
}

// Remove deletes an artifact from the local cache.
func (s *Service) Remove(ctx context.Context, ref Reference) error {
	return s.repository.Delete(ctx, ref)
}

// Import stores a locally built module binary in the cache.
func (s *Service) Import(ctx context.Context, a *Artifact, module io.Reader) (string, error) {
	path, err := s.repository.Store(ctx, a, module)
	if err != nil {
		return "", fmt.Errorf("storing artifact: %w", err)
	}
	s.logger.Info("artifact imported", "artifact", a.Reference().String(), "path", path)
	return path, nil
}
