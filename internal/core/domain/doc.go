// Package domain defines the core business entities for brain.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: bytes plus a declared media type and source category
//   - Identity: the owner whose commitments are extracted
//   - CandidateCommitment: a commitment as produced by inference
//   - ResolvedCommitment: a commitment with a canonical due date
//   - Note and Task: what the pipeline hands to persistence
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
