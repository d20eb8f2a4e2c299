package response

import (
	"context"

	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/pkg/llm"
	"chatdoc-be/pkg/rag/prompt"
	"chatdoc-be/pkg/rag/retriever"
)

const (
	AnswerTemperature = 0.1
	AnswerMaxTokens   = 800
)

// Generator composes grounded answers from ranked chunks.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, logger logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Compose sends one grounded user message under the system instruction.
// Provider errors are returned unchanged; there are no retries.
func (g *Generator) Compose(ctx context.Context, query string, ranked []retriever.Ranked) (string, error) {
	message := prompt.BuildGroundedMessage(query, ranked)

	answer, err := g.llmProvider.Chat(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: message}},
		llm.WithSystemPrompt(prompt.SystemInstruction),
		llm.WithTemperature(AnswerTemperature),
		llm.WithMaxTokens(AnswerMaxTokens),
	)
	if err != nil {
		g.logger.Error("GENERATION", "Completion failed", map[string]interface{}{
			"error":  err.Error(),
			"chunks": len(ranked),
		})
		return "", err
	}

	g.logger.Debug("GENERATION", "Answer generated", map[string]interface{}{
		"chunks":        len(ranked),
		"answer_length": len(answer),
	})
	return answer, nil
}
