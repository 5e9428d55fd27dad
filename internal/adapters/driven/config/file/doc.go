// Package file provides file-based implementations of configuration
// concerns. These adapters persist data to the local filesystem.
//
// Adapters:
//   - Config: TOML-based application configuration
//   - PromptStore: User-editable transcription prompts with embedded defaults
package file
