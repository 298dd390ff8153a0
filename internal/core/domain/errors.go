package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates a media type with no decode backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrTooLarge indicates a payload above the configured size ceiling.
	ErrTooLarge = errors.New("payload too large")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Extraction and image OCR are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the inference API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrConfigNotFound indicates a config key has no value.
	ErrConfigNotFound = errors.New("config key not found")

	// Pipeline Errors.

	// ErrExtractionFailed marks an inference failure during commitment
	// extraction. It never leaves the extractor.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrDateUnparseable marks a due-date phrase no parser understood.
	ErrDateUnparseable = errors.New("date unparseable")

	// ErrDateOutOfRange marks a resolved date outside the plausibility window.
	ErrDateOutOfRange = errors.New("date outside plausible range")
)

// DecodeErrorKind classifies decode-stage failures.
type DecodeErrorKind string

// Decode failure kinds. All of them are fatal to a pipeline run.
const (
	DecodeUnsupportedType     DecodeErrorKind = "unsupported_type"
	DecodeInsufficientContent DecodeErrorKind = "insufficient_content"
	DecodeEmptyDocument       DecodeErrorKind = "empty_document"
	DecodeOCRFailed           DecodeErrorKind = "ocr_failed"
	// DecodeUnreadable covers corrupt or password-protected documents.
	DecodeUnreadable DecodeErrorKind = "unreadable"
)

// String returns the string representation.
func (k DecodeErrorKind) String() string {
	return string(k)
}

// DecodeError is the typed failure returned by the format decoder.
// Cause is a human-readable explanation suitable for end users.
type DecodeError struct {
	Kind  DecodeErrorKind
	Cause string
	Err   error
}

// NewDecodeError creates a decode error wrapping an optional backend error.
func NewDecodeError(kind DecodeErrorKind, cause string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Cause: cause, Err: err}
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return e.Cause + ": " + e.Err.Error()
	}
	return e.Cause
}

// Unwrap returns the backend error, if any.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports unsupported-type decode errors as ErrUnsupportedType.
func (e *DecodeError) Is(target error) bool {
	return target == ErrUnsupportedType && e.Kind == DecodeUnsupportedType
}

// AsDecodeError extracts a DecodeError from an error chain.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
