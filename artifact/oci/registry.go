// Package oci implements OCI registry adapters for provider artifacts.
package oci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
	"github.com/spindle-dev/spindle-host-sdk/netutil"
)

// ModuleMediaType is the OCI layer media type for provider module binaries.
const ModuleMediaType = "application/vnd.spindle.provider.module.wasm.v1"

// DefaultMaxModuleSize caps module layer downloads at 100 MiB.
const DefaultMaxModuleSize = 100 * 1024 * 1024

// RegistryAdapter implements artifact.Registry using oras-go.
type RegistryAdapter struct {
	auth          artifact.AuthProvider
	httpClient    *http.Client
	maxModuleSize int64
}

// RegistryOption configures a RegistryAdapter.
type RegistryOption func(*RegistryAdapter)

// WithMaxModuleSize overrides the module layer download size cap.
func WithMaxModuleSize(limit int64) RegistryOption {
	return func(a *RegistryAdapter) {
		a.maxModuleSize = limit
	}
}

// WithHTTPClient overrides the HTTP client used for registry requests.
func WithHTTPClient(client *http.Client) RegistryOption {
	return func(a *RegistryAdapter) {
		a.httpClient = client
	}
}

// NewRegistryAdapter creates an OCI registry adapter.
func NewRegistryAdapter(auth artifact.AuthProvider, opts ...RegistryOption) *RegistryAdapter {
	a := &RegistryAdapter{
		auth: auth,
		httpClient: &http.Client{
			Transport: &netutil.RetryTransport{},
		},
		maxModuleSize: DefaultMaxModuleSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Pull downloads a provider artifact from an OCI registry.
func (a *RegistryAdapter) Pull(ctx context.Context, ref artifact.Reference) (*artifact.Pulled, error) {
	repo, err := a.repository(ctx, ref)
	if err != nil {
		return nil, err
	}

	memoryStore := memory.New()
	manifestDesc, err := oras.Copy(ctx, repo, ref.Version(), memoryStore, ref.Version(), oras.CopyOptions{})
	if err != nil {
		return nil, fmt.Errorf("pull artifact: %w", err)
	}

	manifestBytes, err := fetchAll(ctx, memoryStore, manifestDesc)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	manifest, err := parseManifest(manifestBytes)
	if err != nil {
		return nil, err
	}

	configBytes, err := fetchAll(ctx, memoryStore, manifest.Config)
	if err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}

	metadata, err := parseMetadata(configBytes)
	if err != nil {
		return nil, err
	}

	moduleDesc, err := findModuleLayer(manifest)
	if err != nil {
		return nil, err
	}
	if moduleDesc.Size > a.maxModuleSize {
		return nil, fmt.Errorf("module layer is %d bytes, limit is %d bytes", moduleDesc.Size, a.maxModuleSize)
	}

	moduleBytes, err := fetchLimited(ctx, memoryStore, moduleDesc, a.maxModuleSize)
	if err != nil {
		return nil, fmt.Errorf("fetch module: %w", err)
	}

	digest, err := artifact.ParseDigest(string(moduleDesc.Digest))
	if err != nil {
		return nil, fmt.Errorf("invalid layer digest: %w", err)
	}

	return &artifact.Pulled{
		Artifact: artifact.New(ref, digest, metadata),
		Module:   io.NopCloser(bytes.NewReader(moduleBytes)),
	}, nil
}

// Resolve resolves a version tag to its manifest digest without pulling.
func (a *RegistryAdapter) Resolve(ctx context.Context, ref artifact.Reference) (artifact.Digest, error) {
	repo, err := a.repository(ctx, ref)
	if err != nil {
		return artifact.Digest{}, err
	}

	desc, err := repo.Resolve(ctx, ref.Version())
	if err != nil {
		return artifact.Digest{}, fmt.Errorf("resolve %s: %w", ref.String(), err)
	}

	return artifact.ParseDigest(string(desc.Digest))
}

// repository creates an authenticated repository client for the reference.
func (a *RegistryAdapter) repository(ctx context.Context, ref artifact.Reference) (*remote.Repository, error) {
	repo, err := remote.NewRepository(ref.String())
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}

	client := &auth.Client{Client: a.httpClient}
	if a.auth != nil {
		username, password, err := a.auth.GetCredentials(ctx, ref.Registry())
		if err == nil && username != "" {
			client.Credential = func(ctx context.Context, registry string) (auth.Credential, error) {
				return auth.Credential{
					Username: username,
					Password: password,
				}, nil
			}
		}
	}
	repo.Client = client

	return repo, nil
}

func fetchAll(ctx context.Context, store *memory.Store, desc ocispec.Descriptor) ([]byte, error) {
	rc, err := store.Fetch(ctx, desc)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// fetchLimited reads blob content with a hard size cap, so a layer whose
// descriptor understates its size still cannot exceed the limit.
func fetchLimited(ctx context.Context, store *memory.Store, desc ocispec.Descriptor, limit int64) ([]byte, error) {
	rc, err := store.Fetch(ctx, desc)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(netutil.NewLimitedReader(rc, limit))
}

func parseManifest(data []byte) (*ocispec.Manifest, error) {
	var manifest ocispec.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	return &manifest, nil
}

func parseMetadata(data []byte) (artifact.Metadata, error) {
	var meta artifact.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return artifact.Metadata{}, fmt.Errorf("invalid config JSON: %w", err)
	}
	return meta, nil
}

func findModuleLayer(manifest *ocispec.Manifest) (ocispec.Descriptor, error) {
	for _, layer := range manifest.Layers {
		if layer.MediaType == ModuleMediaType {
			return layer, nil
		}
	}
	return ocispec.Descriptor{}, fmt.Errorf("no module layer found")
}
