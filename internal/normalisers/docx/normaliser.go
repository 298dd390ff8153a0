// Package docx extracts text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.DecodeBackend = (*Normaliser)(nil)

// User-facing causes.
const (
	CauseEmpty      = "No text found in Word document. The file may be empty or corrupted."
	CauseUnreadable = "Could not read Word document. Try converting to PDF or plain text."
)

const documentPart = "word/document.xml"

// maxDocumentXML bounds the decompressed size of word/document.xml.
const maxDocumentXML = 256 << 20

var errNoDocumentPart = errors.New("docx: missing " + documentPart)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMediaTypes returns the media types this normaliser handles.
func (n *Normaliser) SupportedMediaTypes() []domain.MediaType {
	return []domain.MediaType{domain.MediaTypeDOCX}
}

// Decode extracts paragraph text from word/document.xml.
func (n *Normaliser) Decode(_ context.Context, content []byte, _ domain.MediaType) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", domain.NewDecodeError(domain.DecodeUnreadable, CauseUnreadable, err)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return "", domain.NewDecodeError(domain.DecodeUnreadable, CauseUnreadable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewDecodeError(domain.DecodeEmptyDocument, CauseEmpty, nil)
	}
	return text, nil
}

// extractDocumentText finds and parses word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentPart, err)
		}
		defer rc.Close()

		return parseDocumentXML(io.LimitReader(rc, maxDocumentXML))
	}
	return "", errNoDocumentPart
}

// parseDocumentXML walks the WordprocessingML token stream.
// Text runs (w:t) are concatenated, tabs and breaks are kept,
// and every paragraph (including table cells) ends with a newline.
func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var out strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}

	return out.String(), nil
}
