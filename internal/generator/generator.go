// Package generator abstracts the external text backend. The engine hands it
// a PromptSpec directive; rendering is the backend's job and every call is
// cancellable so a slow generation never blocks the turn budget.
package generator

import (
	"context"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// PromptSpec carries stage-specific template parameters for a generated
// response. The engine never ships rendered text to the backend, only the
// parameters the backend needs to render it.
type PromptSpec struct {
	Stage        domain.Stage
	Instruction  string
	UserMessage  string
	Slots        map[string]string
	History      []domain.Message
	SystemPrompt string
}

// Generator produces response text from a prompt directive.
type Generator interface {
	Generate(ctx context.Context, spec PromptSpec) (string, error)
}
