package artifact

import (
	"context"
	"io"
	"log/slog"
)

// MockResolver implements Resolver for testing.
type MockResolver struct {
	BaseResolver
	Found  *Artifact
	Err    error
	Called bool
}

func (m *MockResolver) Resolve(ctx context.Context, ref Reference) (*Artifact, error) {
	m.Called = true
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Found != nil {
		return m.Found, nil
	}
	return m.ResolveNext(ctx, ref)
}

// MockRepository implements Repository.
type MockRepository struct {
	FindArtifact *Artifact
	FindPath     string
	FindErr      error

	StorePath string
	StoreErr  error
	Stored    []*Artifact

	ListArtifacts []*Artifact
	ListErr       error

	Deleted []Reference
}

func (m *MockRepository) Find(ctx context.Context, ref Reference) (*Artifact, string, error) {
	if m.FindErr != nil {
		return nil, "", m.FindErr
	}
	return m.FindArtifact, m.FindPath, nil
}

func (m *MockRepository) Store(ctx context.Context, a *Artifact, module io.Reader) (string, error) {
	if m.StoreErr != nil {
		return "", m.StoreErr
	}
	m.Stored = append(m.Stored, a)
	return m.StorePath, nil
}

func (m *MockRepository) List(ctx context.Context) ([]*Artifact, error) {
	return m.ListArtifacts, m.ListErr
}

func (m *MockRepository) Delete(ctx context.Context, ref Reference) error {
	m.Deleted = append(m.Deleted, ref)
	return nil
}

// MockRegistry implements Registry.
type MockRegistry struct {
	PullResult *Pulled
	PullErr    error
}

func (m *MockRegistry) Pull(ctx context.Context, ref Reference) (*Pulled, error) {
	if m.PullErr != nil {
		return nil, m.PullErr
	}
	return m.PullResult, nil
}

func (m *MockRegistry) Resolve(ctx context.Context, ref Reference) (Digest, error) {
	d, _ := NewDigest("sha256", "0000000000000000000000000000000000000000000000000000000000000000")
	return d, nil
}

// MockVerifier implements Verifier.
type MockVerifier struct {
	VerifyResult *SignatureResult
	VerifyErr    error
}

func (m *MockVerifier) VerifySignature(ctx context.Context, ref Reference) (*SignatureResult, error) {
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	if m.VerifyResult == nil {
		return &SignatureResult{Verified: true, Signer: "test-signer"}, nil
	}
	return m.VerifyResult, nil
}

// MockTrustGate implements TrustGate.
type MockTrustGate struct {
	Err    error
	Called bool
}

func (m *MockTrustGate) Approve(ctx context.Context, a *Artifact) error {
	m.Called = true
	return m.Err
}

func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
