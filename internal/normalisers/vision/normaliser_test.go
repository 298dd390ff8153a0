package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// mockLLM records the image it was asked to transcribe.
type mockLLM struct {
	text string
	err  error

	got    driven.Image
	prompt string
	opts   driven.GenerateOptions
}

func (m *mockLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", errors.New("not used")
}

func (m *mockLLM) GenerateStructured(context.Context, string, driven.ResponseSchema, driven.GenerateOptions) ([]byte, error) {
	return nil, errors.New("not used")
}

func (m *mockLLM) Transcribe(_ context.Context, img driven.Image, prompt string, opts driven.GenerateOptions) (string, error) {
	m.got = img
	m.prompt = prompt
	m.opts = opts
	return m.text, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-vision" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// heicRunner pretends to be a HEIC converter by writing a PNG to the output path.
type heicRunner struct {
	available map[string]bool
	png       []byte
	err       error
	ran       string
}

func (r *heicRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.ran = name
	if r.err != nil {
		return nil, r.err
	}
	out := args[len(args)-1]
	return nil, os.WriteFile(out, r.png, 0o600)
}

func (r *heicRunner) LookPath(name string) (string, error) {
	if r.available[name] {
		return "/usr/bin/" + name, nil
	}
	return "", exec.ErrNotFound
}

type mockPrompts struct{ prompt string }

func (p mockPrompts) Load(string) (string, error) { return p.prompt, nil }
func (p mockPrompts) Reload()                     {}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestSupportedMediaTypes(t *testing.T) {
	types := New(&mockLLM{}).SupportedMediaTypes()
	assert.ElementsMatch(t, []domain.MediaType{domain.MediaTypeJPEG, domain.MediaTypePNG, domain.MediaTypeHEIC}, types)
}

func TestDecode_PNG(t *testing.T) {
	llm := &mockLLM{text: "  Buy milk\nCall Sam  "}
	n := New(llm)

	text, err := n.Decode(context.Background(), encodePNG(t, 40, 20), domain.MediaTypePNG)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk\nCall Sam", text)

	assert.Equal(t, "image/jpeg", llm.got.MediaType)
	assert.Equal(t, DefaultPrompt, llm.prompt)
	assert.Equal(t, 4096, llm.opts.MaxTokens)
	img := decodeJPEG(t, llm.got.Data)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestDecode_Downscales(t *testing.T) {
	llm := &mockLLM{text: "text"}
	n := New(llm, WithMaxWidth(100))

	_, err := n.Decode(context.Background(), encodePNG(t, 400, 200), domain.MediaTypePNG)
	require.NoError(t, err)

	img := decodeJPEG(t, llm.got.Data)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestDecode_EmptyResponse(t *testing.T) {
	n := New(&mockLLM{text: " \n "})

	_, err := n.Decode(context.Background(), encodePNG(t, 10, 10), domain.MediaTypePNG)
	de, ok := domain.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecodeOCRFailed, de.Kind)
	assert.Equal(t, CauseNoText, de.Cause)
}

func TestDecode_InferenceError(t *testing.T) {
	n := New(&mockLLM{err: errors.New("503")})

	_, err := n.Decode(context.Background(), encodePNG(t, 10, 10), domain.MediaTypePNG)
	de, ok := domain.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecodeOCRFailed, de.Kind)
	assert.Equal(t, CauseFailed, de.Cause)
}

func TestDecode_NoLLM(t *testing.T) {
	_, err := New(nil).Decode(context.Background(), encodePNG(t, 10, 10), domain.MediaTypePNG)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestDecode_CorruptImage(t *testing.T) {
	llm := &mockLLM{text: "never"}
	_, err := New(llm).Decode(context.Background(), []byte("not an image"), domain.MediaTypeJPEG)

	de, ok := domain.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecodeOCRFailed, de.Kind)
	assert.Nil(t, llm.got.Data, "inference must not be called")
}

func TestDecode_HEIC(t *testing.T) {
	runner := &heicRunner{available: map[string]bool{"magick": true}, png: encodePNG(t, 30, 30)}
	llm := &mockLLM{text: "whiteboard notes"}
	n := New(llm, WithRunner(runner))

	text, err := n.Decode(context.Background(), []byte("heic bytes"), domain.MediaTypeHEIC)
	require.NoError(t, err)
	assert.Equal(t, "whiteboard notes", text)
	assert.Equal(t, "magick", runner.ran)
}

func TestDecode_HEICNoConverter(t *testing.T) {
	n := New(&mockLLM{text: "x"}, WithRunner(&heicRunner{}))

	_, err := n.Decode(context.Background(), []byte("heic bytes"), domain.MediaTypeHEIC)
	de, ok := domain.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecodeOCRFailed, de.Kind)
	assert.ErrorIs(t, err, errNoConverter)
}

func TestDecode_HEICForcedConverter(t *testing.T) {
	runner := &heicRunner{available: map[string]bool{"heif-convert": true, "sips": true}, png: encodePNG(t, 5, 5)}
	n := New(&mockLLM{text: "x"}, WithRunner(runner), WithHEICConverter("sips"))

	_, err := n.Decode(context.Background(), []byte("heic bytes"), domain.MediaTypeHEIC)
	require.NoError(t, err)
	assert.Equal(t, "sips", runner.ran)
}

func TestDecode_PromptOverride(t *testing.T) {
	llm := &mockLLM{text: "x"}
	n := New(llm)
	n.SetPromptStore(mockPrompts{prompt: "Transcribe verbatim."})

	_, err := n.Decode(context.Background(), encodePNG(t, 5, 5), domain.MediaTypePNG)
	require.NoError(t, err)
	assert.Equal(t, "Transcribe verbatim.", llm.prompt)
}

func TestFitWidth(t *testing.T) {
	tests := []struct {
		w, h, maxW   int
		wantW, wantH int
	}{
		{4000, 3000, 2000, 2000, 1500},
		{1000, 800, 2000, 1000, 800},
		{2000, 10, 2000, 2000, 10},
		{5000, 1, 2000, 2000, 1},
		{300, 300, 0, 300, 300},
	}

	for _, tt := range tests {
		w, h := fitWidth(tt.w, tt.h, tt.maxW)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestConverterArgs(t *testing.T) {
	args, ok := converterArgs("sips", "in.heic", "out.png")
	require.True(t, ok)
	assert.Equal(t, []string{"-s", "format", "png", "in.heic", "--out", "out.png"}, args)

	_, ok = converterArgs("gimp", "a", "b")
	assert.False(t, ok)
}
