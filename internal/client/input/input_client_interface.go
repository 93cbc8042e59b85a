package input

import (
	"io"
	"mime"
	"strings"
	"time"

	"github.com/SayaAndy/saya-today-font-converter/config"
)

// InputClient lists and opens source fonts. Paths are slash-separated and
// relative to the configured root or prefix.
type InputClient interface {
	Scan() ([]string, error)
	ReadMetadata(path string) (*MetadataStruct, error)
	GetReader(path string) (io.ReadCloser, error)
}

type MetadataStruct struct {
	Name         string
	StorageType  string
	Hash         string
	ContentType  string
	LastModified time.Time
	Size         int64
	Misc         map[string]string
}

var NewInputClientMap = map[string]func(cfg *config.InputConfig) (InputClient, error){
	"local": NewLocalUnixInputClient,
	"b2":    NewB2InputClient,
}

var fontContentTypes = map[string]string{
	"otf":   "font/otf",
	"ttf":   "font/ttf",
	"woff":  "font/woff",
	"woff2": "font/woff2",
}

// ContentTypeByExtension maps a file extension, with or without the leading
// dot, to a MIME type.
func ContentTypeByExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if contentType, ok := fontContentTypes[ext]; ok {
		return contentType
	}
	return mime.TypeByExtension("." + ext)
}
