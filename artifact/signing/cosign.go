// Package signing implements signature verification for provider artifacts.
package signing

import (
	"context"
	"fmt"

	"github.com/sigstore/cosign/v2/pkg/cosign"
	"github.com/sigstore/cosign/v2/pkg/oci/remote"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
)

// CosignVerifier implements artifact.Verifier using Cosign.
type CosignVerifier struct {
	publicKeys  []string
	oidcIssuers []string
}

// NewCosignVerifier creates a Cosign-based verifier. With no public keys it
// falls back to keyless verification against the given OIDC issuers.
func NewCosignVerifier(publicKeys []string, oidcIssuers []string) *CosignVerifier {
	if len(oidcIssuers) == 0 {
		oidcIssuers = []string{
			"https://token.actions.githubusercontent.com",
			"https://gitlab.com",
		}
	}

	return &CosignVerifier{
		publicKeys:  publicKeys,
		oidcIssuers: oidcIssuers,
	}
}

// VerifySignature checks the artifact signature.
func (v *CosignVerifier) VerifySignature(ctx context.Context, ref artifact.Reference) (*artifact.SignatureResult, error) {
	if ref.IsLocal() {
		return nil, fmt.Errorf("cannot verify signature of local artifact %s", ref.String())
	}

	opts := &cosign.CheckOpts{
		RegistryClientOpts: []remote.Option{},
	}

	if len(v.publicKeys) > 0 {
		return v.verifyWithPublicKeys(ctx, ref, opts)
	}

	return v.verifyKeyless(ctx, ref, opts)
}

func (v *CosignVerifier) verifyWithPublicKeys(
	ctx context.Context,
	ref artifact.Reference,
	opts *cosign.CheckOpts,
) (*artifact.SignatureResult, error) {
	for _, keyPath := range v.publicKeys {
		verifier, err := loadKeyVerifier(ctx, keyPath)
		if err != nil {
			continue
		}
		opts.SigVerifier = verifier

		result, err := verifySignatures(ctx, ref, opts)
		if err == nil {
			return result, nil
		}
	}
	return nil, fmt.Errorf("no valid signatures found for %s", ref.String())
}

func (v *CosignVerifier) verifyKeyless(
	ctx context.Context,
	ref artifact.Reference,
	opts *cosign.CheckOpts,
) (*artifact.SignatureResult, error) {
	opts.IgnoreTlog = false
	opts.Identities = make([]cosign.Identity, 0, len(v.oidcIssuers))
	for _, issuer := range v.oidcIssuers {
		opts.Identities = append(opts.Identities, cosign.Identity{Issuer: issuer})
	}

	return verifySignatures(ctx, ref, opts)
}
