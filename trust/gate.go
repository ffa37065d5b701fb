package trust

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
)

// Level controls the gate's prompting behavior.
type Level string

const (
	LevelStrict     Level = "strict"
	LevelStandard   Level = "standard"
	LevelPermissive Level = "permissive"
)

// Gate decides whether unsigned artifacts may be loaded: checks stored
// approvals, prompts for missing decisions, persists them. Implements
// artifact.TrustGate.
type Gate struct {
	store    Store
	prompter Prompter
	level    Level
	logger   *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithStore sets the trust store.
func WithStore(s Store) Option {
	return func(g *Gate) { g.store = s }
}

// WithPrompter sets the prompter.
func WithPrompter(p Prompter) Option {
	return func(g *Gate) { g.prompter = p }
}

// WithLevel sets the trust policy level.
func WithLevel(level Level) Option {
	return func(g *Gate) { g.level = level }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// NewGate creates a trust gate with pluggable store and prompter.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		level:  LevelStandard,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = NewFileStore()
	}
	if g.prompter == nil {
		g.prompter = NewTerminalPrompter()
	}
	return g
}

// Approve decides whether the artifact may be loaded. Returns nil when
// trusted; a rejection is reported as an artifact.NotTrustedError.
func (g *Gate) Approve(ctx context.Context, a *artifact.Artifact) error {
	if g.level == LevelPermissive {
		g.logger.Warn("auto-trusting unsigned artifact (permissive mode)",
			"artifact", a.Reference().String())
		return nil
	}

	set, err := g.store.Load()
	if err != nil {
		set = &Set{}
	}

	name := a.Reference().Name()
	digest := a.Digest().String()

	if set.IsTrusted(name, digest) {
		return nil
	}

	// A stored approval with a different digest means the artifact content
	// changed since it was trusted.
	if stored, ok := set.Artifacts[name]; ok && stored != digest {
		g.logger.Error("trusted artifact digest changed",
			"artifact", a.Reference().String(),
			"stored", stored,
			"actual", digest)
		return &artifact.NotTrustedError{
			Reference: a.Reference(),
			Reason:    fmt.Sprintf("digest changed since approval (stored %s)", stored),
		}
	}

	if g.level == LevelStrict {
		return &artifact.NotTrustedError{
			Reference: a.Reference(),
			Reason:    "unsigned artifacts denied by strict trust policy",
		}
	}

	if !g.prompter.IsInteractive() {
		return g.prompter.FormatNonInteractiveError(a)
	}

	trusted, always, err := g.prompter.PromptForArtifact(a)
	if err != nil {
		return err
	}
	if !trusted {
		return &artifact.NotTrustedError{
			Reference: a.Reference(),
			Reason:    "denied by operator",
		}
	}

	if always {
		set.Add(name, digest)
		if err := g.store.Save(set); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save trust store: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Trust decision saved to %s\n", g.store.ConfigPath())
		}
	}

	return nil
}
