package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

func TestNewGenerator_DefaultTimeout(t *testing.T) {
	g := NewGenerator(&mockLLM{}, nil, domain.AIProviderGemini, 0)
	assert.Equal(t, DefaultGenerationTimeout, g.timeout)
}

func TestGenerator_Generate(t *testing.T) {
	llm := &mockLLM{text: "  Ants are eusocial insects.\n"}
	g := NewGenerator(llm, nil, domain.AIProviderGemini, time.Second)

	gen := g.Generate(context.Background(), "What are ants?", "Ant (id=1_0): Ants live in colonies.")

	assert.False(t, gen.Failed())
	assert.Equal(t, "Ants are eusocial insects.", gen.Text)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "You are InsectPedia.")
	assert.Contains(t, llm.prompts[0], "Context:\nAnt (id=1_0): Ants live in colonies.\n\nQuestion:\nWhat are ants?")
}

func TestGenerator_Generate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		llm      driven.LLMService
		provider domain.AIProvider
		want     string
	}{
		{
			name:     "no llm configured",
			llm:      nil,
			provider: domain.AIProviderGemini,
			want:     "❌ Error calling Gemini: LLM service unavailable (set GEMINI_API_KEY)",
		},
		{
			name:     "no llm configured without env key",
			llm:      nil,
			provider: domain.AIProviderOllama,
			want:     "❌ Error calling Ollama: LLM service unavailable",
		},
		{
			name:     "provider error",
			llm:      &mockLLM{err: errors.New("quota exceeded")},
			provider: domain.AIProviderGemini,
			want:     "❌ Error calling Gemini: quota exceeded",
		},
		{
			name:     "empty response",
			llm:      &mockLLM{text: "   \n"},
			provider: domain.AIProviderOpenAI,
			want:     "⚠️ OpenAI returned no response.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.llm, nil, tt.provider, time.Second)

			gen := g.Generate(context.Background(), "q", "ctx")

			assert.True(t, gen.Failed())
			assert.Empty(t, gen.Text)
			assert.Equal(t, tt.want, gen.Err)
			assert.Equal(t, tt.want, gen.Message())
		})
	}
}

func TestGenerator_Generate_Timeout(t *testing.T) {
	g := NewGenerator(&mockLLM{block: true}, nil, domain.AIProviderAnthropic, 10*time.Millisecond)

	gen := g.Generate(context.Background(), "q", "ctx")

	assert.True(t, gen.Failed())
	assert.Contains(t, gen.Err, "❌ Error calling Anthropic:")
	assert.Contains(t, gen.Err, context.DeadlineExceeded.Error())
}

func TestGenerator_Template(t *testing.T) {
	tests := []struct {
		name    string
		prompts driven.PromptStore
		want    string
	}{
		{name: "no store", prompts: nil, want: driven.DefaultAnswerPrompt},
		{name: "custom", prompts: &mockPromptStore{prompt: "C=%s Q=%s"}, want: "C=%s Q=%s"},
		{name: "load error", prompts: &mockPromptStore{err: errors.New("denied")}, want: driven.DefaultAnswerPrompt},
		{name: "one placeholder", prompts: &mockPromptStore{prompt: "Q=%s"}, want: driven.DefaultAnswerPrompt},
		{name: "stray verb", prompts: &mockPromptStore{prompt: "%d%% C=%s Q=%s"}, want: driven.DefaultAnswerPrompt},
		{name: "escaped percent", prompts: &mockPromptStore{prompt: "Be 100%% sure.\nC=%s Q=%s"}, want: "Be 100%% sure.\nC=%s Q=%s"},
		{name: "trailing percent", prompts: &mockPromptStore{prompt: "C=%s Q=%s %"}, want: driven.DefaultAnswerPrompt},
		{name: "flagged verb", prompts: &mockPromptStore{prompt: "C=%-5s Q=%s"}, want: driven.DefaultAnswerPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&mockLLM{}, tt.prompts, domain.AIProviderGemini, time.Second)
			assert.Equal(t, tt.want, g.template())
		})
	}
}

func TestGenerator_Generate_CustomPrompt(t *testing.T) {
	llm := &mockLLM{text: "ok"}
	g := NewGenerator(llm, &mockPromptStore{prompt: "C=%s Q=%s"}, domain.AIProviderGemini, time.Second)

	g.Generate(context.Background(), "why?", "because")

	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "C=because Q=why?", llm.prompts[0])
}

func TestFormatVerbs(t *testing.T) {
	tests := []struct {
		tmpl string
		want string
	}{
		{"", ""},
		{"plain text", ""},
		{"C=%s Q=%s", "ss"},
		{"100%% of %s and %s", "ss"},
		{"%%s", ""},
		{"%d%% %s", "ds"},
		{"ends with %", "!"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVerbs(tt.tmpl))
		})
	}
}

func TestGenerator_Generate_EscapedPercentInPrompt(t *testing.T) {
	llm := &mockLLM{text: "Bees pollinate."}
	prompts := &mockPromptStore{prompt: "Answer with 100%% certainty.\n%s\n%s"}
	g := NewGenerator(llm, prompts, domain.AIProviderGemini, time.Second)

	gen := g.Generate(context.Background(), "What do bees do?", "Bee (id=2_0): Bees pollinate flowers.")

	require.False(t, gen.Failed())
	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "Answer with 100% certainty.\nBee (id=2_0): Bees pollinate flowers.\nWhat do bees do?", llm.prompts[0])
}
