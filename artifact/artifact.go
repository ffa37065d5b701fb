package artifact

// Metadata contains descriptive information about a provider artifact.
type Metadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`

	// Capability is the capability the packaged provider implements.
	Capability string `json:"capability"`

	// Accepts lists glob patterns the provider declares for its inputs.
	Accepts []string `json:"accepts,omitempty"`
}

// Artifact is a provider artifact with verified identity: a reference, the
// content digest of its module binary, and its metadata.
type Artifact struct {
	reference Reference
	digest    Digest
	metadata  Metadata
}

// New creates an artifact.
func New(ref Reference, digest Digest, metadata Metadata) *Artifact {
	return &Artifact{
		reference: ref,
		digest:    digest,
		metadata:  metadata,
	}
}

// Reference returns the artifact's unique identifier.
func (a *Artifact) Reference() Reference {
	return a.reference
}

// Digest returns the content hash of the module binary.
func (a *Artifact) Digest() Digest {
	return a.digest
}

// Metadata returns the artifact's descriptive information.
func (a *Artifact) Metadata() Metadata {
	return a.metadata
}

// VerifyIntegrity checks that the artifact's digest matches the expected
// value.
func (a *Artifact) VerifyIntegrity(expected Digest) error {
	if !a.digest.Equals(expected) {
		return &IntegrityError{
			Expected: expected,
			Actual:   a.digest,
		}
	}
	return nil
}
