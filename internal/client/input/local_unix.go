package input

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/SayaAndy/saya-today-font-converter/config"
)

var _ InputClient = (*LocalUnixInputClient)(nil)

type LocalUnixInputClient struct {
	path            string
	maxDepth        int
	knownExtensions []string
}

func NewLocalUnixInputClient(cfg *config.InputConfig) (InputClient, error) {
	if cfg.Storage.Type != "local" {
		return nil, fmt.Errorf("invalid storage type for LocalUnixInputClient")
	}
	localCfg, ok := cfg.Storage.Config.(*config.LocalConfig)
	if !ok {
		return nil, fmt.Errorf("invalid storage config for LocalUnixInputClient")
	}

	return &LocalUnixInputClient{
		path:            localCfg.Path,
		maxDepth:        localCfg.MaxDepth,
		knownExtensions: cfg.KnownExtensions,
	}, nil
}

func (c *LocalUnixInputClient) Scan() ([]string, error) {
	return c.recursiveScan("", c.maxDepth)
}

func (c *LocalUnixInputClient) recursiveScan(rel string, depth int) ([]string, error) {
	filePaths := make([]string, 0)
	entries, err := os.ReadDir(filepath.Join(c.path, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("fail to read directory: %w", err)
	}

	for _, entry := range entries {
		entryPath := path.Join(rel, entry.Name())
		if entry.IsDir() {
			if depth <= 0 {
				continue
			}
			subFilePaths, err := c.recursiveScan(entryPath, depth-1)
			if err != nil {
				return nil, fmt.Errorf("fail to scan subdirectory '%s': %w", entry.Name(), err)
			}
			filePaths = append(filePaths, subFilePaths...)
			continue
		}

		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if ext == "" || !slices.Contains(c.knownExtensions, ext) {
			continue
		}
		slog.Debug("found input file", slog.String("path", entryPath))
		filePaths = append(filePaths, entryPath)
	}

	return filePaths, nil
}

func (c *LocalUnixInputClient) ReadMetadata(path string) (*MetadataStruct, error) {
	fileInfo, err := os.Stat(c.fullPath(path))
	if err != nil {
		return nil, fmt.Errorf("fail to read file info: %w", err)
	}

	return &MetadataStruct{
		Name:         fileInfo.Name(),
		StorageType:  "local",
		Hash:         strconv.FormatInt(fileInfo.ModTime().Unix(), 16) + "-" + strconv.FormatInt(fileInfo.Size(), 16),
		ContentType:  ContentTypeByExtension(filepath.Ext(fileInfo.Name())),
		LastModified: fileInfo.ModTime(),
		Size:         fileInfo.Size(),
		Misc:         map[string]string{},
	}, nil
}

func (c *LocalUnixInputClient) GetReader(path string) (io.ReadCloser, error) {
	return os.Open(c.fullPath(path))
}

func (c *LocalUnixInputClient) fullPath(path string) string {
	return filepath.Join(c.path, filepath.FromSlash(path))
}
