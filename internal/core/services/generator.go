package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// DefaultGenerationTimeout bounds one generation call when none is configured.
const DefaultGenerationTimeout = 60 * time.Second

// Generator asks the LLM to answer a question from assembled context.
// Failures never escape as errors; they become domain.Generation.Err.
type Generator struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	provider domain.AIProvider
	timeout  time.Duration
	opts     driven.GenerateOptions
}

// NewGenerator creates a generator. llm may be nil, in which case every call
// reports the provider as unavailable. prompts may be nil to always use
// driven.DefaultAnswerPrompt.
func NewGenerator(
	llm driven.LLMService,
	prompts driven.PromptStore,
	provider domain.AIProvider,
	timeout time.Duration,
) *Generator {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Generator{
		llm:      llm,
		prompts:  prompts,
		provider: provider,
		timeout:  timeout,
	}
}

// Generate answers question from the assembled passages.
func (g *Generator) Generate(ctx context.Context, question, passages string) domain.Generation {
	label := g.provider.Label()

	if g.llm == nil {
		err := domain.ErrLLMUnavailable
		if env := g.provider.APIKeyEnv(); env != "" {
			err = fmt.Errorf("%w (set %s)", domain.ErrLLMUnavailable, env)
		}
		return failure(label, err)
	}

	prompt := fmt.Sprintf(g.template(), passages, question)
	logger.Debug("Prompt is %d characters", len(prompt))

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := logger.Timed("generation")
	text, err := g.llm.Generate(genCtx, prompt, g.opts)
	done()
	if err != nil {
		logger.Warn("%s generation failed: %v", label, err)
		return failure(label, err)
	}

	if strings.TrimSpace(text) == "" {
		return domain.Generation{Err: fmt.Sprintf("⚠️ %s returned no response.", label)}
	}
	return domain.Generation{Text: strings.TrimSpace(text)}
}

// template returns the answer prompt. A stored template without exactly two
// %s verbs would misplace the context, so the default replaces it.
func (g *Generator) template() string {
	if g.prompts == nil {
		return driven.DefaultAnswerPrompt
	}
	tmpl, err := g.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Warn("Using default answer prompt: %v", err)
		return driven.DefaultAnswerPrompt
	}
	if verbs := formatVerbs(tmpl); verbs != "ss" {
		logger.Warn("Answer prompt must contain exactly two %%s placeholders; using default")
		return driven.DefaultAnswerPrompt
	}
	return tmpl
}

// formatVerbs returns the verb of every fmt directive in tmpl, in order.
// An escaped %% is not a directive. A trailing lone % yields '!'.
func formatVerbs(tmpl string) string {
	var verbs strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			verbs.WriteByte('!')
			break
		}
		i++
		if tmpl[i] != '%' {
			verbs.WriteByte(tmpl[i])
		}
	}
	return verbs.String()
}

func failure(label string, err error) domain.Generation {
	return domain.Generation{Err: fmt.Sprintf("❌ Error calling %s: %v", label, err)}
}
