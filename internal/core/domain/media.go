package domain

import (
	"path/filepath"
	"strings"
)

// MediaType is a declared content type for an input payload.
type MediaType string

// Supported media types.
const (
	MediaTypePDF       MediaType = "application/pdf"
	MediaTypeDOCX      MediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeJPEG      MediaType = "image/jpeg"
	MediaTypePNG       MediaType = "image/png"
	MediaTypeHEIC      MediaType = "image/heic"
	MediaTypePlainText MediaType = "text/plain"
	MediaTypeMarkdown  MediaType = "text/markdown"
)

// SupportedMediaTypes lists every media type the decoder accepts.
func SupportedMediaTypes() []MediaType {
	return []MediaType{
		MediaTypePDF,
		MediaTypeDOCX,
		MediaTypeJPEG,
		MediaTypePNG,
		MediaTypeHEIC,
		MediaTypePlainText,
		MediaTypeMarkdown,
	}
}

// ParseMediaType normalises a declared content type.
// Parameters such as "; charset=utf-8" are dropped and "image/jpg" maps to JPEG.
// Unknown types are returned as-is so the decoder can reject them.
func ParseMediaType(s string) MediaType {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "image/jpg" {
		return MediaTypeJPEG
	}
	return MediaType(s)
}

// MediaTypeFromPath infers a media type from a file extension.
// Returns false for extensions that have no supported media type.
func MediaTypeFromPath(path string) (MediaType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return MediaTypePDF, true
	case ".docx":
		return MediaTypeDOCX, true
	case ".jpg", ".jpeg":
		return MediaTypeJPEG, true
	case ".png":
		return MediaTypePNG, true
	case ".heic":
		return MediaTypeHEIC, true
	case ".txt", ".text":
		return MediaTypePlainText, true
	case ".md", ".markdown":
		return MediaTypeMarkdown, true
	default:
		return "", false
	}
}

// IsSupported returns true if the media type has a decode backend.
func (m MediaType) IsSupported() bool {
	switch m {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeJPEG, MediaTypePNG,
		MediaTypeHEIC, MediaTypePlainText, MediaTypeMarkdown:
		return true
	default:
		return false
	}
}

// IsImage returns true for media types decoded by OCR.
func (m MediaType) IsImage() bool {
	return m == MediaTypeJPEG || m == MediaTypePNG || m == MediaTypeHEIC
}

// String returns the string representation.
func (m MediaType) String() string {
	return string(m)
}

// SourceCategory records where captured text came from.
type SourceCategory string

// Available source categories.
const (
	SourceMeeting SourceCategory = "meeting"
	SourceEmail   SourceCategory = "email"
	SourceMessage SourceCategory = "message"
	SourceNote    SourceCategory = "note"
	SourceOther   SourceCategory = "other"
)

// ParseSourceCategory maps a string to a category.
// Empty input yields SourceOther; unknown values return false.
func ParseSourceCategory(s string) (SourceCategory, bool) {
	c := SourceCategory(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return SourceOther, true
	}
	return c, c.IsValid()
}

// IsValid returns true if the category is recognised.
func (c SourceCategory) IsValid() bool {
	switch c {
	case SourceMeeting, SourceEmail, SourceMessage, SourceNote, SourceOther:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c SourceCategory) String() string {
	return string(c)
}

// RawDocument is the transient input of one pipeline invocation.
type RawDocument struct {
	// Content is the raw bytes.
	Content []byte

	// MediaType is the declared content type.
	MediaType MediaType

	// Source is the declared source category.
	Source SourceCategory

	// Name is an optional file name, used only for logging.
	Name string
}
