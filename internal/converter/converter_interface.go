package converter

import (
	"context"
	"fmt"
	"io"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/output"
)

// Converter produces one web font format from a source font and owns the
// output storage that format is written to.
type Converter interface {
	Format() string
	// CheckAvailable reports whether external tools the converter relies on
	// are present.
	CheckAvailable() error
	DeductOutputPath(inputPath string) string
	Process(ctx context.Context, inputMetadata *input.MetadataStruct, reader io.Reader, outputName string) error
	ReadMetadata(path string) (*output.MetadataStruct, error)
	IsMissing(path string) bool
}

var NewConverterMap = map[string]func(cfg *config.ConverterConfig) (Converter, error){
	"woff":  NewWoffConverter,
	"woff2": NewWoff2Converter,
}

func newOutputClient(cfg *config.ConverterConfig) (output.OutputClient, error) {
	newClient, ok := output.NewOutputClientMap[cfg.Output.Storage.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported output storage type: %s", cfg.Output.Storage.Type)
	}
	return newClient(&cfg.Output)
}
