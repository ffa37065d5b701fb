package signing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/sigstore/cosign/v2/pkg/cosign"
	sigs "github.com/sigstore/cosign/v2/pkg/signature"
	"github.com/sigstore/sigstore/pkg/signature"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
)

func loadKeyVerifier(ctx context.Context, keyRef string) (signature.Verifier, error) {
	return sigs.PublicKeyFromKeyRef(ctx, keyRef)
}

func verifySignatures(ctx context.Context, ref artifact.Reference, opts *cosign.CheckOpts) (*artifact.SignatureResult, error) {
	imageRef, err := name.ParseReference(ref.String())
	if err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}

	checked, bundleVerified, err := cosign.VerifyImageSignatures(ctx, imageRef, opts)
	if err != nil {
		return nil, fmt.Errorf("verify signatures: %w", err)
	}
	if len(checked) == 0 {
		return nil, fmt.Errorf("no signatures found for %s", ref.String())
	}

	result := &artifact.SignatureResult{
		Verified: true,
		SignedAt: time.Now().UTC(),
	}
	if bundleVerified {
		result.TransparencyLog = "rekor"
	}

	cert, err := checked[0].Cert()
	if err == nil && cert != nil {
		result.SignedAt = cert.NotBefore
		if len(cert.EmailAddresses) > 0 {
			result.Signer = cert.EmailAddresses[0]
		} else {
			result.Signer = cert.Subject.CommonName
		}
	}

	return result, nil
}
