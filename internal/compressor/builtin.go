package compressor

import (
	"context"
	"fmt"
	"os"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/tdewolff/font"
)

var _ Compressor = (*BuiltinCompressor)(nil)

// BuiltinCompressor encodes WOFF2 in process. It follows the external
// program's contract: failures are reported through a non-zero exit code
// and stderr text, the output lands next to the input.
type BuiltinCompressor struct{}

func NewBuiltinCompressor(cfg *config.Woff2Config) (Compressor, error) {
	if cfg.Compressor != "builtin" {
		return nil, fmt.Errorf("invalid compressor type for BuiltinCompressor")
	}
	return &BuiltinCompressor{}, nil
}

func (c *BuiltinCompressor) CheckAvailable() error {
	return nil
}

func (c *BuiltinCompressor) Compress(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &Result{ExitCode: 1, Stderr: err.Error()}, nil
	}

	sfnt, err := font.ParseSFNT(data, 0)
	if err != nil {
		return &Result{ExitCode: 1, Stderr: fmt.Sprintf("parse font: %s", err)}, nil
	}

	woff2, err := sfnt.WriteWOFF2()
	if err != nil {
		return &Result{ExitCode: 1, Stderr: fmt.Sprintf("encode woff2: %s", err)}, nil
	}

	outputPath := OutputPath(path)
	if err := os.WriteFile(outputPath, woff2, 0o644); err != nil {
		os.Remove(outputPath)
		return &Result{ExitCode: 1, Stderr: err.Error()}, nil
	}

	return &Result{Stdout: fmt.Sprintf("Compressed %d bytes into %d bytes\n", len(data), len(woff2))}, nil
}
