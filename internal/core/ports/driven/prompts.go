package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptCommitmentExtraction is the extraction prompt. It is a
	// text/template executed with the owner name, aliases and subject text.
	PromptCommitmentExtraction = "commitment_extraction"

	// PromptImageTranscription is the OCR instruction sent with an image.
	// This prompt has no placeholders.
	PromptImageTranscription = "image_transcription"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its compiled-in default prompt.
	SetPromptStore(store PromptStore)
}
