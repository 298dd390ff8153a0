// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.brain.
//
// Adapters:
//   - ConfigStore: TOML configuration in config.toml
//   - PromptStore: user-editable prompt templates in prompts/
package file
