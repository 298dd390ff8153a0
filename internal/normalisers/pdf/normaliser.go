// Package pdf extracts the text layer of PDF documents using pdftotext.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/command"
	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.DecodeBackend = (*Normaliser)(nil)

// MinContentLength is the fewest characters a PDF text layer may have.
// Anything shorter is most likely a scanned image.
const MinContentLength = 50

// User-facing causes.
const (
	CauseInsufficient = "PDF appears to be scanned or contains minimal text. Try uploading as image for better OCR."
	CauseUnreadable   = "Could not read PDF. The file may be corrupted or password-protected."
)

const toolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

var errNotPDF = errors.New("missing %PDF header")

var pdfMagic = []byte("%PDF-")

// Normaliser handles PDF documents.
type Normaliser struct {
	runner    driven.CommandRunner
	minLength int
}

// New creates a PDF normaliser that runs pdftotext.
func New() *Normaliser {
	return NewWithRunner(command.New())
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner driven.CommandRunner) *Normaliser {
	return &Normaliser{runner: runner, minLength: MinContentLength}
}

// SupportedMediaTypes returns the media types this normaliser handles.
func (n *Normaliser) SupportedMediaTypes() []domain.MediaType {
	return []domain.MediaType{domain.MediaTypePDF}
}

// Decode extracts the text layer. Text shorter than MinContentLength
// fails with InsufficientContent.
func (n *Normaliser) Decode(ctx context.Context, content []byte, _ domain.MediaType) (string, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(content, "\x00\t\r\n "), pdfMagic) {
		return "", domain.NewDecodeError(domain.DecodeUnreadable, CauseUnreadable, errNotPDF)
	}
	if _, err := n.runner.LookPath(toolName); err != nil {
		return "", domain.NewDecodeError(domain.DecodeUnreadable, CauseUnreadable, ErrPDFToolNotFound)
	}

	out, err := n.extract(ctx, content)
	if err != nil {
		return "", domain.NewDecodeError(domain.DecodeUnreadable, CauseUnreadable, err)
	}

	text := plaintext.Clean(out)
	// pdftotext separates pages with form feeds.
	text = strings.TrimSpace(strings.ReplaceAll(text, "\f", "\n"))
	if utf8.RuneCountInString(text) < n.minLength {
		return "", domain.NewDecodeError(domain.DecodeInsufficientContent, CauseInsufficient, nil)
	}
	return text, nil
}

// extract writes the PDF to a temp file and runs pdftotext on it.
func (n *Normaliser) extract(ctx context.Context, content []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "brain-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	return n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", "-eol", "unix", in, "-")
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not on PATH.
func CheckAvailable() error {
	if _, err := command.New().LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return `PDF support requires pdftotext (part of poppler):
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}
