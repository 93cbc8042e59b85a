package compressor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/SayaAndy/saya-today-font-converter/config"
)

var _ Compressor = (*ExecCompressor)(nil)

// ExecCompressor runs an external program as "<path> <font file>", the
// calling convention of Google's woff2_compress.
type ExecCompressor struct {
	path    string
	timeout time.Duration
}

func NewExecCompressor(cfg *config.Woff2Config) (Compressor, error) {
	if cfg.Compressor != "exec" {
		return nil, fmt.Errorf("invalid compressor type for ExecCompressor")
	}
	if cfg.ExecutablePath == "" {
		return nil, fmt.Errorf("executable path is not configured")
	}

	return &ExecCompressor{path: cfg.ExecutablePath, timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}, nil
}

// CheckAvailable stats the configured path. A bare program name is looked up
// in PATH instead.
func (c *ExecCompressor) CheckAvailable() error {
	if filepath.Base(c.path) == c.path {
		if _, err := exec.LookPath(c.path); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCompressorMissing, c.path, err)
		}
		return nil
	}

	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCompressorMissing, c.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrCompressorMissing, c.path)
	}
	return nil
}

func (c *ExecCompressor) Compress(ctx context.Context, path string) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("run %s: %w", c.path, ctxErr)
	}

	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", c.path, err)
	}

	return result, nil
}
