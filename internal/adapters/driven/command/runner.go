// Package command runs external tools such as pdftotext and heif-convert.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// maxStderr caps how much stderr is kept in errors and logs.
const maxStderr = 8 << 10

// Runner executes commands with os/exec.
type Runner struct{}

// New creates a new command runner.
func New() *Runner {
	return &Runner{}
}

// Run executes name with args and returns stdout.
// A failing command's stderr is included in the returned error.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()
	logger.Debug("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		stderr := truncate(strings.TrimSpace(errb.String()), maxStderr)
		logger.Debug("exec: %s failed after %s: %v", name, elapsed, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", name, ctxErr)
		}
		if stderr != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, stderr)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	logger.Debug("exec: %s ok in %s (%d bytes)", name, elapsed, out.Len())
	return out.Bytes(), nil
}

// LookPath reports whether a binary is on PATH.
func (r *Runner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
