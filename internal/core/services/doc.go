// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The commitment pipeline lives here: FormatDecoder, CommitmentExtractor
// and DateResolver are composed by PipelineService, and CaptureService
// persists what the pipeline emits.
//
// Services are pure Go with no CGO.
package services
