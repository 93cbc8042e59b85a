package compressor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/SayaAndy/saya-today-font-converter/config"
)

var ErrCompressorMissing = errors.New("woff2 compressor not found")

// Result is what a compressor run reports back, mirroring a process exit.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Compressor turns the font at path into a WOFF2 file written next to it,
// named by OutputPath.
type Compressor interface {
	CheckAvailable() error
	Compress(ctx context.Context, path string) (*Result, error)
}

var NewCompressorMap = map[string]func(cfg *config.Woff2Config) (Compressor, error){
	"exec":    NewExecCompressor,
	"builtin": NewBuiltinCompressor,
}

// OutputPath is where a compressor leaves the result for the font at path:
// same directory and stem, ".woff2" extension.
func OutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".woff2"
}
