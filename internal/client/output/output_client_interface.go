package output

import (
	"io"
	"time"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
)

type OutputClient interface {
	GetWriter(path string, inputMetadata *input.MetadataStruct, contentType string) (Writer, error)
	ReadMetadata(path string) (*MetadataStruct, error)
	IsMissing(path string) bool
}

// Writer commits the output on Close. Abort discards everything written so
// far and leaves any previous output untouched.
type Writer interface {
	io.WriteCloser
	Abort() error
}

type MetadataStruct struct {
	Name         string
	StorageType  string
	HashOriginal string
	ContentType  string
	LastModified time.Time
	Size         int64
	Misc         map[string]string
}

var NewOutputClientMap = map[string]func(cfg *config.OutputConfig) (OutputClient, error){
	"local": NewLocalUnixOutputClient,
	"b2":    NewB2OutputClient,
}
