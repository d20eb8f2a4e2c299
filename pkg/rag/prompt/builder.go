package prompt

import (
	"fmt"
	"strings"

	"chatdoc-be/pkg/rag/retriever"
)

// SystemInstruction restricts the model to the supplied chunks.
const SystemInstruction = "You are a helpful assistant. Answer strictly using the provided chunks. " +
	"If unsure, say you do not know. Use inline citations like [Chunk X]."

// MaxChunkRunes caps how much of a single chunk is placed in the prompt.
const MaxChunkRunes = 4000

// GroundedBuilder renders the single user message sent with a query.
type GroundedBuilder struct {
	query  string
	ranked []retriever.Ranked
}

func NewGroundedBuilder(query string, ranked []retriever.Ranked) *GroundedBuilder {
	return &GroundedBuilder{query: query, ranked: ranked}
}

func (b *GroundedBuilder) Build() string {
	var prompt strings.Builder

	b.writeUserQuery(&prompt)
	b.writeContext(&prompt)

	return prompt.String()
}

func (b *GroundedBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("User query: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n\n")
}

func (b *GroundedBuilder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("Context:\n")
	for i, r := range b.ranked {
		if i > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(fmt.Sprintf("Chunk %d [score %.3f]:\n", i+1, r.Score))
		prompt.WriteString(truncateRunes(r.Chunk.Text, MaxChunkRunes))
	}
}

// BuildGroundedMessage is shorthand for NewGroundedBuilder(query, ranked).Build().
func BuildGroundedMessage(query string, ranked []retriever.Ranked) string {
	return NewGroundedBuilder(query, ranked).Build()
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
