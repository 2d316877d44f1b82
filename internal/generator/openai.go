package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/config"
)

// ErrEmptyCompletion indicates the backend answered without any choices.
var ErrEmptyCompletion = errors.New("generator returned no choices")

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint,
// including a local Ollama instance via its /v1 compatibility API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewOpenAIClient builds the client from generator config.
func NewOpenAIClient(cfg config.GeneratorConfig, logger *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// Generate renders the prompt spec into chat messages and requests a
// completion. The caller bounds ctx; cancellation aborts only this call.
func (c *OpenAIClient) Generate(ctx context.Context, spec PromptSpec) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(spec.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemPrompt(spec),
	})
	for _, msg := range spec.History {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: spec.UserMessage,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("generation completed",
		zap.String("stage", string(spec.Stage)),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}

func buildSystemPrompt(spec PromptSpec) string {
	var b strings.Builder
	if spec.SystemPrompt != "" {
		b.WriteString(spec.SystemPrompt)
	} else {
		b.WriteString("Ты — вежливый ассистент поддержки клиентов. Отвечай кратко и по делу.")
	}
	if spec.Instruction != "" {
		b.WriteString("\n")
		b.WriteString(spec.Instruction)
	}
	if len(spec.Slots) > 0 {
		b.WriteString("\nИзвестные параметры клиента:")
		for name, value := range spec.Slots {
			b.WriteString(fmt.Sprintf("\n- %s: %s", name, value))
		}
	}
	return b.String()
}
