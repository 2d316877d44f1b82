package funnel

import (
	"context"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/generator"
)

// RetentionHandler re-engages a returning user whose previous conversation
// completed. A buying signal restarts qualification with the accumulated
// slots intact; anything else gets a soft follow-up and completes.
type RetentionHandler struct{}

// NewRetentionHandler constructs the handler.
func NewRetentionHandler() *RetentionHandler {
	return &RetentionHandler{}
}

func (h *RetentionHandler) Stage() domain.Stage { return domain.StageRetention }

func (h *RetentionHandler) RequiredSlots() []string { return nil }

func (h *RetentionHandler) Handle(ctx context.Context, turn *TurnState) (StageResult, error) {
	if turn.Intent.Group == domain.GroupPresales || turn.Intent.Group == domain.GroupTransactions {
		return StageResult{
			Stage:     domain.StageRetention,
			NextStage: domain.StageQualification,
			Directive: Directive{
				Kind: DirectiveCanned,
				Text: "С возвращением! Давайте подберём решение под вашу задачу.",
			},
		}, nil
	}

	return StageResult{
		Stage:     domain.StageRetention,
		NextStage: domain.StageDone,
		Directive: Directive{
			Kind: DirectiveGenerate,
			Text: "Рады видеть вас снова! Если появятся вопросы, просто напишите.",
			Prompt: &generator.PromptSpec{
				Stage:       domain.StageRetention,
				Instruction: "Клиент вернулся после завершённого обращения. Поприветствуй, напомни о доступных услугах и предложи помощь.",
				UserMessage: turn.Utterance.Text,
				Slots:       slotValues(turn.Conversation),
			},
		},
	}, nil
}
