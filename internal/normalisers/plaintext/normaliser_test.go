package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

func TestSupportedMediaTypes(t *testing.T) {
	assert.Equal(t, []domain.MediaType{domain.MediaTypePlainText}, New().SupportedMediaTypes())
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"passthrough", []byte("I'll send the invoice."), "I'll send the invoice."},
		{"trims", []byte("\n\n  hello  \n"), "hello"},
		{"crlf", []byte("a\r\nb\rc"), "a\nb\nc"},
		{"bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...), "hi"},
		{"invalid utf8", []byte{'o', 'k', 0xFF, '!'}, "ok�!"},
		{"unicode", []byte("café ✓"), "café ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Decode(context.Background(), tt.content, domain.MediaTypePlainText)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, content := range [][]byte{nil, []byte(""), []byte(" \n\t ")} {
		_, err := New().Decode(context.Background(), content, domain.MediaTypePlainText)
		de, ok := domain.AsDecodeError(err)
		require.True(t, ok)
		assert.Equal(t, domain.DecodeEmptyDocument, de.Kind)
		assert.Equal(t, CauseEmpty, de.Cause)
	}
}
