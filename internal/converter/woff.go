package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/output"
	"github.com/SayaAndy/saya-today-font-converter/internal/fontfile"
)

var _ Converter = (*WoffConverter)(nil)

type WoffConverter struct {
	reorderTables bool
	outputClient  output.OutputClient
}

func NewWoffConverter(cfg *config.ConverterConfig) (Converter, error) {
	if cfg.Type != "woff" {
		return nil, fmt.Errorf("invalid converter type for WoffConverter")
	}
	woffCfg, ok := cfg.Config.(*config.WoffConfig)
	if !ok || woffCfg == nil {
		woffCfg = &config.WoffConfig{}
	}

	outputClient, err := newOutputClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("fail to initialize output client: %w", err)
	}

	return &WoffConverter{woffCfg.ReorderTables, outputClient}, nil
}

func (c *WoffConverter) Format() string {
	return "woff"
}

func (c *WoffConverter) CheckAvailable() error {
	return nil
}

// Process parses the source font before the output is opened, so corrupt
// input never leaves a file behind.
func (c *WoffConverter) Process(ctx context.Context, inputMetadata *input.MetadataStruct, reader io.Reader, outputName string) error {
	var raw bytes.Buffer
	font, err := fontfile.Read(io.TeeReader(reader, &raw))
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	slog.Debug("parsed font", slog.String("font_name", fontName(raw.Bytes())), slog.Int("tables", len(font.Tables)))

	if err := ctx.Err(); err != nil {
		return err
	}

	writer, err := c.outputClient.GetWriter(outputName, inputMetadata, "font/woff")
	if err != nil {
		return fmt.Errorf("fail to initialize writer for output: %w", err)
	}

	font.Flavor = fontfile.FlavorWOFF
	if err := font.Save(writer, fontfile.SaveOptions{ReorderTables: c.reorderTables}); err != nil {
		if abortErr := writer.Abort(); abortErr != nil {
			slog.Warn("fail to discard partial output", slog.String("output_path", outputName), slog.String("error", abortErr.Error()))
		}
		return fmt.Errorf("encode woff: %w", err)
	}

	return writer.Close()
}

func (c *WoffConverter) DeductOutputPath(inputPath string) string {
	return deductOutputPath(inputPath, ".woff")
}

func (c *WoffConverter) ReadMetadata(path string) (*output.MetadataStruct, error) {
	return c.outputClient.ReadMetadata(path)
}

func (c *WoffConverter) IsMissing(path string) bool {
	return c.outputClient.IsMissing(path)
}
