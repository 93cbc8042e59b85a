package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
	"golang.org/x/sys/unix"
)

const hashAttribute = "user.originalfile.hash"

var _ OutputClient = (*LocalUnixOutputClient)(nil)

type LocalUnixOutputClient struct {
	path     string
	fileMode uint32
	dirMode  uint32
	attrMode string
}

func NewLocalUnixOutputClient(cfg *config.OutputConfig) (OutputClient, error) {
	if cfg.Storage.Type != "local" {
		return nil, fmt.Errorf("invalid storage type for LocalUnixOutputClient")
	}
	localCfg, ok := cfg.Storage.Config.(*config.LocalConfig)
	if !ok {
		return nil, fmt.Errorf("invalid storage config for LocalUnixOutputClient")
	}

	filePermissionMode := localCfg.FilePermissionMode
	if filePermissionMode == "" {
		filePermissionMode = "0644"
	}
	fpm, err := strconv.ParseUint(filePermissionMode, 8, 32)
	if err != nil {
		return nil, fmt.Errorf("fail to parse file permission mode as an octal number: %w", err)
	}

	dirPermissionMode := localCfg.DirPermissionMode
	if dirPermissionMode == "" {
		dirPermissionMode = "0755"
	}
	dpm, err := strconv.ParseUint(dirPermissionMode, 8, 32)
	if err != nil {
		return nil, fmt.Errorf("fail to parse directory permission mode as an octal number: %w", err)
	}

	attrMode := localCfg.AttributesImplementation
	switch attrMode {
	case "":
		attrMode = "none"
	case "xattr", "none":
	default:
		return nil, fmt.Errorf("unknown attributes implementation: %s", attrMode)
	}

	return &LocalUnixOutputClient{localCfg.Path, uint32(fpm), uint32(dpm), attrMode}, nil
}

// GetWriter creates the parent directories and returns a writer backed by a
// hidden partial file next to the destination; Close renames it into place.
func (c *LocalUnixOutputClient) GetWriter(path string, inputMetadata *input.MetadataStruct, contentType string) (Writer, error) {
	finalPath := c.fullPath(path)
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, os.FileMode(c.dirMode)); err != nil {
		return nil, fmt.Errorf("fail to mkdir parent directories for a path: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(finalPath)+".*.partial")
	if err != nil {
		return nil, fmt.Errorf("fail to create a file: %w", err)
	}

	hashOriginal := ""
	if inputMetadata != nil {
		hashOriginal = inputMetadata.Hash
	}

	return &localFileWriter{
		File:         f,
		finalPath:    finalPath,
		fileMode:     os.FileMode(c.fileMode),
		attrMode:     c.attrMode,
		hashOriginal: hashOriginal,
	}, nil
}

func (c *LocalUnixOutputClient) ReadMetadata(path string) (*MetadataStruct, error) {
	fullPath := c.fullPath(path)
	fileInfo, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("fail to read file info: %w", err)
	}

	hashOriginal := ""
	switch c.attrMode {
	case "xattr":
		hashOriginal, err = getHashAttribute(fullPath)
		if err != nil {
			return nil, err
		}
	case "none":
	default:
		return nil, fmt.Errorf("unknown attributes implementation: %s", c.attrMode)
	}

	return &MetadataStruct{
		Name:         fileInfo.Name(),
		StorageType:  "local",
		HashOriginal: hashOriginal,
		ContentType:  input.ContentTypeByExtension(filepath.Ext(fileInfo.Name())),
		LastModified: fileInfo.ModTime(),
		Size:         fileInfo.Size(),
		Misc: map[string]string{
			"Size": strconv.FormatInt(fileInfo.Size(), 10),
		},
	}, nil
}

func (c *LocalUnixOutputClient) IsMissing(path string) bool {
	_, err := os.Stat(c.fullPath(path))
	return err != nil
}

func (c *LocalUnixOutputClient) fullPath(path string) string {
	return filepath.Join(c.path, filepath.FromSlash(path))
}

func getHashAttribute(path string) (string, error) {
	sz, err := unix.Getxattr(path, hashAttribute, nil)
	if errors.Is(err, unix.ENODATA) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("fail to get size of %s attribute: %w", hashAttribute, err)
	}
	value := make([]byte, sz)
	n, err := unix.Getxattr(path, hashAttribute, value)
	if err != nil {
		return "", fmt.Errorf("fail to get %s attribute: %w", hashAttribute, err)
	}
	return string(value[:n]), nil
}

type localFileWriter struct {
	*os.File
	finalPath    string
	fileMode     os.FileMode
	attrMode     string
	hashOriginal string
	done         bool
}

func (w *localFileWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	partialPath := w.File.Name()
	if err := w.File.Close(); err != nil {
		os.Remove(partialPath)
		return fmt.Errorf("fail to close output file: %w", err)
	}
	if err := os.Chmod(partialPath, w.fileMode); err != nil {
		os.Remove(partialPath)
		return fmt.Errorf("fail to set output file mode: %w", err)
	}
	if w.attrMode == "xattr" && w.hashOriginal != "" {
		if err := unix.Setxattr(partialPath, hashAttribute, []byte(w.hashOriginal), 0); err != nil {
			os.Remove(partialPath)
			return fmt.Errorf("fail to write %s xattribute: %w", hashAttribute, err)
		}
	}
	if err := os.Rename(partialPath, w.finalPath); err != nil {
		os.Remove(partialPath)
		return fmt.Errorf("fail to move output file into place: %w", err)
	}
	return nil
}

func (w *localFileWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true

	w.File.Close()
	if err := os.Remove(w.File.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fail to remove partial output file: %w", err)
	}
	return nil
}
