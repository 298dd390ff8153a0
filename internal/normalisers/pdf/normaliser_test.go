package pdf

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output  []byte
	err     error
	missing bool

	name string
	args []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func (m *mockRunner) LookPath(name string) (string, error) {
	if m.missing {
		return "", exec.ErrNotFound
	}
	return "/usr/bin/" + name, nil
}

var fakePDF = []byte("%PDF-1.4 fake pdf content")

const longText = "Project kickoff.\n\nAlex: I'll draft the timeline and share it with the team by Thursday."

func TestSupportedMediaTypes(t *testing.T) {
	assert.Equal(t, []domain.MediaType{domain.MediaTypePDF}, New().SupportedMediaTypes())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{}
	normaliser := NewWithRunner(runner)
	require.NotNil(t, normaliser)
	assert.Equal(t, runner, normaliser.runner)
	assert.Equal(t, MinContentLength, normaliser.minLength)
}

func TestDecode_Success(t *testing.T) {
	runner := &mockRunner{output: []byte(longText + "\n\f")}
	n := NewWithRunner(runner)

	text, err := n.Decode(context.Background(), fakePDF, domain.MediaTypePDF)
	require.NoError(t, err)
	assert.Equal(t, longText, text)

	assert.Equal(t, "pdftotext", runner.name)
	require.Len(t, runner.args, 7)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}, runner.args[:5])
	assert.True(t, strings.HasSuffix(runner.args[5], "input.pdf"))
	assert.Equal(t, "-", runner.args[6])
}

func TestDecode_InsufficientContent(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"empty", ""},
		{"whitespace", "   \n\f\n  "},
		{"short", "Page 1"},
		{"just under threshold", strings.Repeat("x", MinContentLength-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewWithRunner(&mockRunner{output: []byte(tt.output)})

			text, err := n.Decode(context.Background(), fakePDF, domain.MediaTypePDF)
			assert.Empty(t, text)
			de, ok := domain.AsDecodeError(err)
			require.True(t, ok)
			assert.Equal(t, domain.DecodeInsufficientContent, de.Kind)
			assert.Equal(t, CauseInsufficient, de.Cause)
		})
	}
}

func TestDecode_AtThreshold(t *testing.T) {
	n := NewWithRunner(&mockRunner{output: []byte(strings.Repeat("é", MinContentLength))})

	text, err := n.Decode(context.Background(), fakePDF, domain.MediaTypePDF)
	require.NoError(t, err)
	assert.Equal(t, MinContentLength, len([]rune(text)))
}

func TestDecode_RunnerError(t *testing.T) {
	n := NewWithRunner(&mockRunner{err: errors.New("Syntax Error: Couldn't find trailer dictionary")})

	_, err := n.Decode(context.Background(), fakePDF, domain.MediaTypePDF)
	de, ok := domain.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecodeUnreadable, de.Kind)
	assert.Equal(t, CauseUnreadable, de.Cause)
}

func TestDecode_NotAPDF(t *testing.T) {
	runner := &mockRunner{output: []byte(longText)}
	n := NewWithRunner(runner)

	_, err := n.Decode(context.Background(), []byte("PK\x03\x04 zip bytes"), domain.MediaTypePDF)
	de, ok := domain.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecodeUnreadable, de.Kind)
	assert.Empty(t, runner.name, "pdftotext must not run")
}

func TestDecode_ToolMissing(t *testing.T) {
	n := NewWithRunner(&mockRunner{missing: true})

	_, err := n.Decode(context.Background(), fakePDF, domain.MediaTypePDF)
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.DecodeBackend = (*Normaliser)(nil)
}
