// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DecodeBackend: Turns the bytes of one media type into text
//   - ConfigStore: Application configuration
//   - NoteStore: Note persistence
//   - TaskStore: Task persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Inference. Without it, extraction yields no commitments
//     and image OCR fails with OcrFailed.
//   - PromptStore: Prompt overrides. Without it, compiled-in prompts are used.
//   - CommandRunner: Subprocess execution. Defaults to os/exec.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
