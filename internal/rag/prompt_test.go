package rag

import (
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func TestNewPromptTemplateValidation(t *testing.T) {
	cases := []struct {
		name     string
		messages []PromptMessage
		wantErr  bool
	}{
		{"empty template", nil, true},
		{"unknown role", []PromptMessage{{Role: "assistant", Text: "{input}"}}, true},
		{"empty text", []PromptMessage{{Role: RoleSystem, Text: "  "}}, true},
		{"missing input placeholder", []PromptMessage{{Role: RoleHuman, Text: "no placeholder"}}, true},
		{"valid", []PromptMessage{
			{Role: RoleSystem, Text: "instructions"},
			{Role: RoleHuman, Text: "{input} with {context}"},
		}, false},
	}
	for _, tc := range cases {
		_, err := NewPromptTemplate(tc.messages)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func messageText(m llms.MessageContent) string {
	var b strings.Builder
	for _, part := range m.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	tpl, err := NewPromptTemplate([]PromptMessage{
		{Role: RoleSystem, Text: "Answer from context only."},
		{Role: RoleHuman, Text: "Q: {input}\nC: {context}"},
	})
	if err != nil {
		t.Fatalf("NewPromptTemplate: %v", err)
	}

	messages := tpl.Render("what is the price?", "[PAGE 2]\nThe price is 100.")
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != llms.ChatMessageTypeSystem {
		t.Errorf("first message role = %v, want system", messages[0].Role)
	}
	if messages[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("second message role = %v, want human", messages[1].Role)
	}
	human := messageText(messages[1])
	if !strings.Contains(human, "what is the price?") {
		t.Errorf("question not substituted: %q", human)
	}
	if !strings.Contains(human, "The price is 100.") {
		t.Errorf("context not substituted: %q", human)
	}
}

func TestDefaultPromptTemplate(t *testing.T) {
	tpl := DefaultPromptTemplate("Italian")
	messages := tpl.Render("domanda", "contesto")
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	system := messageText(messages[0])
	if !strings.Contains(system, "Italian") {
		t.Errorf("language not injected into system prompt: %q", system)
	}
	if !strings.Contains(system, NotFoundAnswer) {
		t.Errorf("system prompt must pin the not-found phrase")
	}
}
