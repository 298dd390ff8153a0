package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Ensure FormatDecoder implements the interface.
var _ driving.FormatDecoder = (*FormatDecoder)(nil)

// FormatDecoder dispatches a payload to the backend registered for its
// media type. Only media types in domain.SupportedMediaTypes can be
// registered; anything else fails with UnsupportedType.
type FormatDecoder struct {
	backends map[domain.MediaType]driven.DecodeBackend
	timeout  time.Duration
}

// NewFormatDecoder creates a decoder. A later backend replaces an earlier
// one for the same media type. A non-positive timeout uses the default.
func NewFormatDecoder(timeout time.Duration, backends ...driven.DecodeBackend) *FormatDecoder {
	if timeout <= 0 {
		timeout = domain.DefaultDecodeTimeout
	}
	d := &FormatDecoder{
		backends: make(map[domain.MediaType]driven.DecodeBackend),
		timeout:  timeout,
	}
	for _, b := range backends {
		for _, mt := range b.SupportedMediaTypes() {
			if !mt.IsSupported() {
				logger.Warn("decoder: ignoring backend for unsupported media type %s", mt)
				continue
			}
			d.backends[mt] = b
		}
	}
	return d
}

// MediaTypes returns the media types with a registered backend.
func (d *FormatDecoder) MediaTypes() []domain.MediaType {
	var out []domain.MediaType
	for _, mt := range domain.SupportedMediaTypes() {
		if _, ok := d.backends[mt]; ok {
			out = append(out, mt)
		}
	}
	return out
}

// Decode extracts non-empty text from content. Backend errors, panics
// and timeouts are all returned as a *domain.DecodeError.
func (d *FormatDecoder) Decode(ctx context.Context, content []byte, mediaType domain.MediaType) (text string, derr *domain.DecodeError) {
	mediaType = domain.ParseMediaType(string(mediaType))
	backend, ok := d.backends[mediaType]
	if !ok || !mediaType.IsSupported() {
		return "", domain.NewDecodeError(domain.DecodeUnsupportedType,
			fmt.Sprintf("Unsupported file type: %s", mediaType), domain.ErrUnsupportedType)
	}

	kind, cause := failureFor(mediaType)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			text = ""
			derr = domain.NewDecodeError(kind, cause, fmt.Errorf("decoder panic: %v", r))
		}
	}()

	start := time.Now()
	out, err := backend.Decode(ctx, content, mediaType)
	logger.Debug("decoder: %s, %d bytes in %s", mediaType, len(content), time.Since(start))
	if err != nil {
		if de, ok := domain.AsDecodeError(err); ok {
			return "", de
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.NewDecodeError(kind, cause, fmt.Errorf("timed out after %s: %w", d.timeout, err))
		}
		return "", domain.NewDecodeError(kind, cause, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", domain.NewDecodeError(emptyFor(mediaType))
	}
	return out, nil
}

// failureFor returns the kind and cause used when a backend fails
// without classifying the failure itself.
func failureFor(mt domain.MediaType) (domain.DecodeErrorKind, string) {
	switch mt {
	case domain.MediaTypePDF:
		return domain.DecodeUnreadable, "Could not read PDF. The file may be corrupted or password-protected."
	case domain.MediaTypeDOCX:
		return domain.DecodeUnreadable, "Could not read Word document. Try converting to PDF or plain text."
	case domain.MediaTypeJPEG, domain.MediaTypePNG, domain.MediaTypeHEIC:
		return domain.DecodeOCRFailed, "Image OCR failed. Please paste text manually or try a different image."
	case domain.MediaTypePlainText, domain.MediaTypeMarkdown:
		return domain.DecodeUnreadable, "Could not read text file."
	default:
		return domain.DecodeUnsupportedType, fmt.Sprintf("Unsupported file type: %s", mt)
	}
}

// emptyFor returns the failure for a backend that produced only whitespace.
func emptyFor(mt domain.MediaType) (domain.DecodeErrorKind, string, error) {
	switch mt {
	case domain.MediaTypePDF:
		return domain.DecodeInsufficientContent,
			"PDF appears to be scanned or contains minimal text. Try uploading as image for better OCR.", nil
	case domain.MediaTypeDOCX:
		return domain.DecodeEmptyDocument, "No text found in Word document. The file may be empty or corrupted.", nil
	case domain.MediaTypeJPEG, domain.MediaTypePNG, domain.MediaTypeHEIC:
		return domain.DecodeOCRFailed,
			"Could not extract text from image. Please paste text manually or try a clearer image.", nil
	default:
		return domain.DecodeEmptyDocument, "Text file is empty.", nil
	}
}
