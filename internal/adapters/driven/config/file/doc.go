// Package file provides file-based implementations of driven port interfaces
// for configuration. These adapters persist data under the insectopedia home
// directory (~/.insectopedia unless INSECTOPEDIA_HOME or --config-dir say otherwise).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
package file
