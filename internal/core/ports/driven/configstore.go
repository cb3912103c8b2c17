package driven

// ConfigStore holds flat settings under dot-notation keys such as
// "embedding.model". Set persists immediately. Typed getters return the zero
// value when a key is missing or holds another type; GetInt and GetFloat
// accept any numeric value.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool

	Set(key string, value any) error

	// Unset removes a key so that its default applies again.
	Unset(key string) error
}
