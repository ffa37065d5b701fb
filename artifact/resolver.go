package artifact

import (
	"context"
	"fmt"
	"log/slog"
)

// Resolver locates an artifact matching a reference.
// Implementations form a chain of responsibility: cache first, then remote.
type Resolver interface {
	// Resolve attempts to locate the artifact.
	Resolve(ctx context.Context, ref Reference) (*Artifact, error)

	// SetNext sets the next resolver in the chain.
	SetNext(next Resolver)
}

// BaseResolver provides the common chain logic.
type BaseResolver struct {
	next Resolver
}

// SetNext sets the next resolver in the chain.
func (b *BaseResolver) SetNext(next Resolver) {
	b.next = next
}

// ResolveNext delegates to the next resolver in the chain.
func (b *BaseResolver) ResolveNext(ctx context.Context, ref Reference) (*Artifact, error) {
	if b.next == nil {
		return nil, &NotFoundError{Reference: ref}
	}
	return b.next.Resolve(ctx, ref)
}

// CachedResolver checks the local repository for artifacts.
type CachedResolver struct {
	BaseResolver
	repository Repository
}

// NewCachedResolver creates a cache-backed resolver.
func NewCachedResolver(repository Repository) *CachedResolver {
	return &CachedResolver{repository: repository}
}

// Resolve checks the cache, otherwise delegates to the next resolver.
func (r *CachedResolver) Resolve(ctx context.Context, ref Reference) (*Artifact, error) {
	a, _, err := r.repository.Find(ctx, ref)
	if err == nil {
		return a, nil
	}
	return r.ResolveNext(ctx, ref)
}

// RemoteResolver pulls artifacts from a remote registry and stores them in the
// local repository.
type RemoteResolver struct {
	BaseResolver
	registry   Registry
	repository Repository
	logger     *slog.Logger
}

// NewRemoteResolver creates a registry-backed resolver.
func NewRemoteResolver(registry Registry, repository Repository, logger *slog.Logger) *RemoteResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteResolver{
		registry:   registry,
		repository: repository,
		logger:     logger,
	}
}

// Resolve pulls from the registry and caches the result.
func (r *RemoteResolver) Resolve(ctx context.Context, ref Reference) (*Artifact, error) {
	pulled, err := r.registry.Pull(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("pulling %s: %w", ref.String(), err)
	}
	defer func() { _ = pulled.Close() }()

	path, err := r.repository.Store(ctx, pulled.Artifact, pulled.Module)
	if err != nil {
		return nil, fmt.Errorf("caching %s: %w", ref.String(), err)
	}

	r.logger.Info("artifact pulled and cached",
		"artifact", ref.String(),
		"digest", pulled.Artifact.Digest().String(),
		"path", path)

	return pulled.Artifact, nil
}
