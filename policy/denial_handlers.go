package policy

import (
	"fmt"
	"log/slog"
	"os"
)

// Ensure implementations satisfy the interface.
var (
	_ DenialHandler = (*StderrDenialHandler)(nil)
	_ DenialHandler = (*SlogDenialHandler)(nil)
	_ DenialHandler = (*NopDenialHandler)(nil)
)

// StderrDenialHandler logs denials to stderr.
type StderrDenialHandler struct{}

func (h *StderrDenialHandler) OnDenial(capabilityName, providerID, reason string) {
	fmt.Fprintf(os.Stderr, "Provider Denied [%s/%s]: %s\n", capabilityName, providerID, reason)
}

// SlogDenialHandler logs denials through a structured logger.
type SlogDenialHandler struct {
	Logger *slog.Logger
}

func (h *SlogDenialHandler) OnDenial(capabilityName, providerID, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("provider denied by policy",
		"capability", capabilityName,
		"provider", providerID,
		"reason", reason)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(capabilityName, providerID, reason string) {}
