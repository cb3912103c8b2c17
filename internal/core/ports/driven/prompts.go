package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer grounds the model in retrieved passages.
	// The template expects two %s placeholders: the context, then the question.
	PromptAnswer = "answer"
)

// DefaultAnswerPrompt is the PromptAnswer template used when no override exists.
const DefaultAnswerPrompt = `You are InsectPedia. Answer only insect-related questions.

Context:
%s

Question:
%s`
