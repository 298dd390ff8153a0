package vision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// heicConverters are tried in order when no converter is forced.
var heicConverters = []string{"heif-convert", "magick", "sips"}

func converterArgs(tool, in, out string) ([]string, bool) {
	switch tool {
	case "heif-convert", "magick":
		return []string{in, out}, true
	case "sips":
		return []string{"-s", "format", "png", in, "--out", out}, true
	default:
		return nil, false
	}
}

// convertHEIC converts HEIC bytes to PNG bytes in a temp directory.
func (n *Normaliser) convertHEIC(ctx context.Context, content []byte) ([]byte, error) {
	tool, err := n.pickConverter()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "brain-heic-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.heic")
	out := filepath.Join(dir, "page.png")
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return nil, fmt.Errorf("write temp heic: %w", err)
	}

	args, _ := converterArgs(tool, in, out)
	if _, err := n.runner.Run(ctx, tool, args...); err != nil {
		return nil, wrapConvert(tool, err)
	}

	png, err := os.ReadFile(out)
	if err != nil {
		return nil, wrapConvert(tool, fmt.Errorf("no output: %w", err))
	}
	return png, nil
}

func (n *Normaliser) pickConverter() (string, error) {
	if n.heicTool != "" {
		if _, ok := converterArgs(n.heicTool, "", ""); !ok {
			return "", fmt.Errorf("unknown HEIC converter %q: use heif-convert, magick or sips", n.heicTool)
		}
		if _, err := n.runner.LookPath(n.heicTool); err != nil {
			return "", fmt.Errorf("HEIC converter %s: %w", n.heicTool, err)
		}
		return n.heicTool, nil
	}
	for _, tool := range heicConverters {
		if _, err := n.runner.LookPath(tool); err == nil {
			return tool, nil
		}
	}
	return "", errNoConverter
}
