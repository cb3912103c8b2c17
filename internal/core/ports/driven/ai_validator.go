package driven

import "github.com/insectopedia/insectopedia/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved, so that
// a typo in a model name or key surfaces in 'settings' rather than mid-build.
// Settings with no provider configured are accepted.
type AIConfigValidator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateLLM(settings *domain.LLMSettings) error
}
