package domain

// PipelineState is the state of a single pipeline run.
type PipelineState string

// Pipeline states. Completed and DecodeFailed are terminal.
const (
	PipelineDecoding       PipelineState = "decoding"
	PipelineExtraction     PipelineState = "extraction"
	PipelineDateResolution PipelineState = "date_resolution"
	PipelineEmission       PipelineState = "emission"
	PipelineCompleted      PipelineState = "completed"
	PipelineDecodeFailed   PipelineState = "decode_failed"
)

// IsTerminal returns true for states that end a run.
func (s PipelineState) IsTerminal() bool {
	return s == PipelineCompleted || s == PipelineDecodeFailed
}

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}

// PipelineResult is the output of a pipeline run.
type PipelineResult struct {
	State PipelineState

	// Text is the normalised source text. Empty when decoding failed.
	Text string

	Commitments []ResolvedCommitment

	// Err is set only in the DecodeFailed state.
	Err *DecodeError
}

// Completed returns true if the run reached the Completed state.
func (r PipelineResult) Completed() bool {
	return r.State == PipelineCompleted
}
