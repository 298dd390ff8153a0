// Package plaintext passes UTF-8 text through the decoder.
package plaintext

import (
	"bytes"
	"context"
	"strings"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.DecodeBackend = (*Normaliser)(nil)

// CauseEmpty is returned when the text is blank.
const CauseEmpty = "Text file is empty."

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMediaTypes returns the media types this normaliser handles.
func (n *Normaliser) SupportedMediaTypes() []domain.MediaType {
	return []domain.MediaType{domain.MediaTypePlainText}
}

// Decode returns the content as text. Invalid UTF-8 sequences are
// replaced with U+FFFD, a leading BOM is dropped and line endings
// are normalised to \n.
func (n *Normaliser) Decode(_ context.Context, content []byte, _ domain.MediaType) (string, error) {
	text := Clean(content)
	if text == "" {
		return "", domain.NewDecodeError(domain.DecodeEmptyDocument, CauseEmpty, nil)
	}
	return text, nil
}

// Clean converts bytes to trimmed, valid UTF-8 text with \n line endings.
func Clean(content []byte) string {
	content = bytes.TrimPrefix(content, utf8BOM)
	text := strings.ToValidUTF8(string(content), "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
