package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/output"
	"github.com/SayaAndy/saya-today-font-converter/internal/compressor"
)

const tempFilePrefix = "temp_"

var _ Converter = (*Woff2Converter)(nil)

type Woff2Converter struct {
	compressor   compressor.Compressor
	scratchDir   string
	outputClient output.OutputClient
}

func NewWoff2Converter(cfg *config.ConverterConfig) (Converter, error) {
	if cfg.Type != "woff2" {
		return nil, fmt.Errorf("invalid converter type for Woff2Converter")
	}
	woff2Cfg, ok := cfg.Config.(*config.Woff2Config)
	if !ok || woff2Cfg == nil {
		return nil, fmt.Errorf("missing woff2 converter config")
	}

	newCompressor, ok := compressor.NewCompressorMap[woff2Cfg.Compressor]
	if !ok {
		return nil, fmt.Errorf("unsupported woff2 compressor: %s", woff2Cfg.Compressor)
	}
	comp, err := newCompressor(woff2Cfg)
	if err != nil {
		return nil, fmt.Errorf("fail to initialize compressor: %w", err)
	}

	outputClient, err := newOutputClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("fail to initialize output client: %w", err)
	}

	return &Woff2Converter{comp, woff2Cfg.ScratchDir, outputClient}, nil
}

func (c *Woff2Converter) Format() string {
	return "woff2"
}

func (c *Woff2Converter) CheckAvailable() error {
	return c.compressor.CheckAvailable()
}

// Process copies the source into a scratch directory of its own, lets the
// compressor turn it into a sibling .woff2 file and streams that file into
// the output. The scratch directory is removed on every path.
func (c *Woff2Converter) Process(ctx context.Context, inputMetadata *input.MetadataStruct, reader io.Reader, outputName string) error {
	if c.scratchDir != "" {
		if err := os.MkdirAll(c.scratchDir, 0o755); err != nil {
			return fmt.Errorf("create scratch root: %w", err)
		}
	}
	scratch, err := os.MkdirTemp(c.scratchDir, "woff2-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			slog.Warn("fail to remove scratch directory", slog.String("path", scratch), slog.String("error", err.Error()))
		}
	}()

	tempPath := filepath.Join(scratch, tempFilePrefix+tempBaseName(inputMetadata, outputName))
	if err := copyToFile(tempPath, reader); err != nil {
		return fmt.Errorf("create temporary copy: %w", err)
	}

	result, err := c.compressor.Compress(ctx, tempPath)
	if err != nil {
		return fmt.Errorf("run compressor: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("compressor exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	slog.Debug("compressor finished", slog.String("output_path", outputName), slog.String("stdout", strings.TrimSpace(result.Stdout)))

	compressed, err := os.Open(compressor.OutputPath(tempPath))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("compressor reported success but produced no %s", filepath.Base(compressor.OutputPath(tempPath)))
	}
	if err != nil {
		return fmt.Errorf("open compressed font: %w", err)
	}
	defer compressed.Close()

	writer, err := c.outputClient.GetWriter(outputName, inputMetadata, "font/woff2")
	if err != nil {
		return fmt.Errorf("fail to initialize writer for output: %w", err)
	}

	if _, err := io.Copy(writer, compressed); err != nil {
		if abortErr := writer.Abort(); abortErr != nil {
			slog.Warn("fail to discard partial output", slog.String("output_path", outputName), slog.String("error", abortErr.Error()))
		}
		return fmt.Errorf("write woff2 output: %w", err)
	}

	return writer.Close()
}

func (c *Woff2Converter) DeductOutputPath(inputPath string) string {
	return deductOutputPath(inputPath, ".woff2")
}

func (c *Woff2Converter) ReadMetadata(path string) (*output.MetadataStruct, error) {
	return c.outputClient.ReadMetadata(path)
}

func (c *Woff2Converter) IsMissing(path string) bool {
	return c.outputClient.IsMissing(path)
}

// tempBaseName keeps the source file name, extension included, for the
// temporary copy handed to the compressor.
func tempBaseName(inputMetadata *input.MetadataStruct, outputName string) string {
	if inputMetadata != nil && inputMetadata.Name != "" {
		return path.Base(inputMetadata.Name)
	}
	return strings.TrimSuffix(path.Base(outputName), path.Ext(outputName)) + ".otf"
}

func copyToFile(dst string, src io.Reader) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
