package rag

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// NotFoundAnswer is the fixed phrase the model is instructed to emit when
// the retrieved context does not contain the answer.
const NotFoundAnswer = "The answer is not found in the provided context."

type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
)

// PromptMessage is one (role, text) pair of the instruction template.
type PromptMessage struct {
	Role Role
	Text string
}

// PromptTemplate is an ordered sequence of prompt messages, validated at
// construction. Rendering substitutes the {input} and {context}
// placeholders.
type PromptTemplate struct {
	messages []PromptMessage
}

func NewPromptTemplate(messages []PromptMessage) (*PromptTemplate, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("prompt template must have at least one message")
	}
	hasInput := false
	for i, m := range messages {
		switch m.Role {
		case RoleSystem, RoleHuman:
		default:
			return nil, fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
		if strings.TrimSpace(m.Text) == "" {
			return nil, fmt.Errorf("message %d: empty text", i)
		}
		if strings.Contains(m.Text, "{input}") {
			hasInput = true
		}
	}
	if !hasInput {
		return nil, fmt.Errorf("prompt template must reference {input}")
	}
	return &PromptTemplate{messages: messages}, nil
}

// Render fills the placeholders and converts the template to model
// messages.
func (t *PromptTemplate) Render(question, contextText string) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(t.messages))
	for _, m := range t.messages {
		text := strings.ReplaceAll(m.Text, "{input}", question)
		text = strings.ReplaceAll(text, "{context}", contextText)
		role := llms.ChatMessageTypeSystem
		if m.Role == RoleHuman {
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, text))
	}
	return out
}

// DefaultPromptTemplate fixes the model's behavior contract: answer only
// from the supplied context, in the given language, cite the page, and emit
// the not-found phrase instead of guessing.
func DefaultPromptTemplate(language string) *PromptTemplate {
	t, err := NewPromptTemplate([]PromptMessage{
		{Role: RoleSystem, Text: fmt.Sprintf(`You are an assistant that ALWAYS answers in %s and relies EXCLUSIVELY on the provided context. Never assume anything that is not present in the context.

The document may use formal, repetitive language or near-synonymous terms; treat such variants as equivalent when matching the question against the context.

IF you find the answer:
- extract it EXACTLY from the context (never invent)
- summarize it clearly
- quote the short passage it was found in
- give the document page where you found it (the [PAGE n] tags)

IF the answer is NOT in the context, say exactly: "%s"

If the question is vague, ask for clarification. Do not use outside knowledge, do not fill in missing parts.`, language, NotFoundAnswer)},
		{Role: RoleHuman, Text: "User question: {input}\n\nAvailable context:\n{context}\n\nAnswer based ONLY on the context. When helpful, quote the exact passage your answer comes from."},
	})
	if err != nil {
		// statically valid, covered by tests
		panic(err)
	}
	return t
}
