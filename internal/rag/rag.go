package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"pdf-chat/internal/index"
	"pdf-chat/internal/models"
)

const defaultTopK = 15

// RAG answers questions by retrieving the most similar chunks from the
// index and prompting the chat model with them. Every call is independent:
// no conversation state is kept between questions.
type RAG struct {
	index  index.Index
	llm    llms.Model
	prompt *PromptTemplate
	topK   int
}

func NewRAG(idx index.Index, llm llms.Model, prompt *PromptTemplate, topK int) *RAG {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &RAG{index: idx, llm: llm, prompt: prompt, topK: topK}
}

// Retrieve returns the top-K chunks for a question, most similar first.
func (r *RAG) Retrieve(ctx context.Context, question string) ([]models.ScoredChunk, error) {
	return r.index.Query(ctx, question, r.topK)
}

// Answer retrieves context for the question, composes the prompt, and
// returns the model's grounded answer. When retrieval comes back empty the
// model is still asked, with empty context, so it emits the not-found
// phrase.
func (r *RAG) Answer(ctx context.Context, question string) (string, error) {
	chunks, err := r.Retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	var contextText strings.Builder
	for _, sc := range chunks {
		contextText.WriteString(sc.Chunk.Text)
		contextText.WriteString("\n\n")
	}

	log.Debug().Int("chunks", len(chunks)).Msg("generating answer")
	messages := r.prompt.Render(question, contextText.String())
	resp, err := r.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", models.ErrGenerationUnavailable)
	}
	return resp.Choices[0].Content, nil
}
