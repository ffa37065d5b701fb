package trust

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
)

// Prompter asks the operator whether to trust an unsigned artifact.
type Prompter interface {
	IsInteractive() bool
	PromptForArtifact(a *artifact.Artifact) (trusted bool, always bool, err error)
	FormatNonInteractiveError(a *artifact.Artifact) error
}

// TerminalPrompter provides interactive terminal prompting for trust
// decisions.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptForArtifact asks the operator to trust an unsigned artifact.
func (p *TerminalPrompter) PromptForArtifact(a *artifact.Artifact) (trusted bool, always bool, err error) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "\033[1;33mUnsigned Provider Artifact\033[0m\n\n")
	fmt.Fprintf(os.Stderr, "  Artifact: %s\n", a.Reference().String())
	fmt.Fprintf(os.Stderr, "  Digest:   %s\n", a.Digest().String())
	if desc := a.Metadata().Description; desc != "" {
		fmt.Fprintf(os.Stderr, "  About:    %s\n", desc)
	}
	fmt.Fprintf(os.Stderr, "\n")

	const (
		OptionYes    = "Yes, trust for this session"
		OptionAlways = "Always trust this digest (save to config)"
		OptionNo     = "No, deny"
	)

	var selection string

	err = huh.NewSelect[string]().
		Title("Trust Unsigned Artifact?").
		Description(fmt.Sprintf("%s has no verifiable signature.", a.Reference().String())).
		Options(
			huh.NewOption(OptionYes, OptionYes),
			huh.NewOption(OptionAlways, OptionAlways),
			huh.NewOption(OptionNo, OptionNo),
		).
		Value(&selection).
		Run()
	if err != nil {
		return false, false, err
	}

	switch selection {
	case OptionYes:
		return true, false, nil
	case OptionAlways:
		return true, true, nil
	default:
		return false, false, nil
	}
}

// FormatNonInteractiveError creates a helpful error message for
// non-interactive mode.
func (p *TerminalPrompter) FormatNonInteractiveError(a *artifact.Artifact) error {
	var msg strings.Builder
	msg.WriteString("unsigned artifact requires a trust decision (running in non-interactive mode)\n\n")
	msg.WriteString(fmt.Sprintf("  Artifact: %s\n", a.Reference().String()))
	msg.WriteString(fmt.Sprintf("  Digest:   %s\n", a.Digest().String()))
	msg.WriteString("\nTo trust this artifact:\n")
	msg.WriteString("  1. Run interactively and approve when prompted\n")
	msg.WriteString("  2. Add the digest to ~/.spindle/trusted.yaml\n")

	return fmt.Errorf("%s", msg.String())
}
