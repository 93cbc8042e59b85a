package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
	"github.com/SayaAndy/saya-today-font-converter/internal/converter"
)

type Options struct {
	// SkipUnchanged skips an output that already records the input's hash.
	SkipUnchanged bool
	Logger        *slog.Logger
}

// Runner converts every font the input client finds with every configured
// converter, one file at a time. A failed conversion is logged and counted
// and never stops the batch.
type Runner struct {
	inputClient   input.InputClient
	converters    []converter.Converter
	skipUnchanged bool
	logger        *slog.Logger
}

func NewRunner(inputClient input.InputClient, converters []converter.Converter, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		inputClient:   inputClient,
		converters:    converters,
		skipUnchanged: opts.SkipUnchanged,
		logger:        logger,
	}
}

func (r *Runner) CheckAvailability() error {
	for _, conv := range r.converters {
		if err := conv.CheckAvailable(); err != nil {
			return fmt.Errorf("%s converter: %w", conv.Format(), err)
		}
	}
	return nil
}

// Run returns an error only when the run could not start: a required tool
// is missing, the input cannot be listed or ctx was canceled. Conversion
// failures end up in the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.CheckAvailability(); err != nil {
		r.logger.Error("required tool is not available, aborting", slog.String("error", err.Error()))
		return nil, err
	}

	formats := make([]string, len(r.converters))
	for i, conv := range r.converters {
		formats[i] = conv.Format()
	}
	report := newReport(formats)

	files, err := r.inputClient.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	if len(files) == 0 {
		r.logger.Warn("no input font files found")
		return report, nil
	}

	slices.Sort(files)
	report.Total = len(files)
	r.logger.Info("found font files to convert", slog.Int("count", len(files)))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run interrupted", slog.String("error", err.Error()))
			return report, err
		}
		r.processFile(ctx, file, report)
	}

	r.logger.Info("font conversion completed", report.LogAttrs()...)
	return report, nil
}

func (r *Runner) processFile(ctx context.Context, file string, report *Report) {
	fileLogger := r.logger.With(slog.String("input_path", file))

	inputMetadata, data, err := r.readInput(file)
	if err != nil {
		fileLogger.Error("fail to read input file", slog.String("error", err.Error()))
		for _, conv := range r.converters {
			report.addFailure(file, conv.Format(), err)
		}
		return
	}

	for _, conv := range r.converters {
		outputName := conv.DeductOutputPath(file)
		convLogger := fileLogger.With(slog.String("format", conv.Format()), slog.String("output_path", outputName))

		if r.skipUnchanged && r.isUnchanged(conv, outputName, inputMetadata, convLogger) {
			convLogger.Info("skip already converted file (based on equal hash)", slog.String("input_hash", inputMetadata.Hash))
			report.Skipped[conv.Format()]++
			continue
		}

		if err := conv.Process(ctx, inputMetadata, bytes.NewReader(data), outputName); err != nil {
			convLogger.Error("fail to convert file", slog.String("error", err.Error()))
			report.addFailure(file, conv.Format(), err)
			continue
		}

		convLogger.Info("converted file")
		report.Succeeded[conv.Format()]++
	}
}

func (r *Runner) readInput(file string) (*input.MetadataStruct, []byte, error) {
	inputMetadata, err := r.inputClient.ReadMetadata(file)
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata: %w", err)
	}

	reader, err := r.inputClient.GetReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}

	return inputMetadata, data, nil
}

func (r *Runner) isUnchanged(conv converter.Converter, outputName string, inputMetadata *input.MetadataStruct, logger *slog.Logger) bool {
	if conv.IsMissing(outputName) {
		return false
	}

	outputMetadata, err := conv.ReadMetadata(outputName)
	if err != nil {
		logger.Warn("fail to read metadata of (supposedly existing) output file", slog.String("error", err.Error()))
		return false
	}

	return outputMetadata.HashOriginal != "" && outputMetadata.HashOriginal == inputMetadata.Hash
}
