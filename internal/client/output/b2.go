package output

import (
	"context"
	"fmt"
	"path"

	"github.com/Backblaze/blazer/b2"
	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
)

const b2HashInfoKey = "original-hash"

var (
	_ OutputClient = (*B2OutputClient)(nil)
	_ Writer       = (*b2Writer)(nil)
)

type B2OutputClient struct {
	prefix string
	bucket *b2.Bucket
	b2cl   *b2.Client
}

func NewB2OutputClient(cfg *config.OutputConfig) (OutputClient, error) {
	if cfg.Storage.Type != "b2" {
		return nil, fmt.Errorf("invalid storage type for B2OutputClient")
	}
	b2cfg, ok := cfg.Storage.Config.(*config.B2Config)
	if !ok {
		return nil, fmt.Errorf("invalid storage config for B2OutputClient")
	}

	b2cl, err := b2.NewClient(context.Background(), b2cfg.KeyID, b2cfg.ApplicationKey)
	if err != nil {
		return nil, err
	}

	bucket, err := b2cl.Bucket(context.Background(), b2cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &B2OutputClient{b2cl: b2cl, bucket: bucket, prefix: b2cfg.Prefix}, nil
}

func (c *B2OutputClient) GetWriter(filePath string, inputMetadata *input.MetadataStruct, contentType string) (Writer, error) {
	obj := c.bucket.Object(c.prefix + filePath)
	if obj == nil {
		return nil, fmt.Errorf("failed to reference object in B2 bucket")
	}

	attrs := &b2.Attrs{ContentType: contentType, Info: map[string]string{}}
	if inputMetadata != nil {
		attrs.Info[b2HashInfoKey] = inputMetadata.Hash
		attrs.LastModified = inputMetadata.LastModified
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &b2Writer{w: obj.NewWriter(ctx, b2.WithAttrsOption(attrs)), cancel: cancel}, nil
}

func (c *B2OutputClient) ReadMetadata(filePath string) (*MetadataStruct, error) {
	obj := c.bucket.Object(c.prefix + filePath)
	if obj == nil {
		return nil, fmt.Errorf("failed to reference object in B2 bucket")
	}

	attrs, err := obj.Attrs(context.Background())
	if err != nil {
		return nil, fmt.Errorf("get attributes for object: %w", err)
	}

	misc := map[string]string{
		"SHA1":            attrs.SHA1,
		"UploadTimestamp": attrs.UploadTimestamp.Format("2006-01-02T15:04:05Z"),
	}
	switch attrs.Status {
	case b2.Uploaded:
		misc["Status"] = "Uploaded"
	case b2.Folder:
		misc["Status"] = "Folder"
	case b2.Hider:
		misc["Status"] = "Hider"
	case b2.Started:
		misc["Status"] = "Started"
	default:
		misc["Status"] = "Unknown"
	}

	return &MetadataStruct{
		Name:         path.Base(attrs.Name),
		StorageType:  "b2",
		HashOriginal: attrs.Info[b2HashInfoKey],
		ContentType:  attrs.ContentType,
		LastModified: attrs.LastModified,
		Size:         attrs.Size,
		Misc:         misc,
	}, nil
}

// IsMissing reports true for hidden objects and whenever the attributes
// cannot be fetched, so a lookup failure never suppresses a conversion.
func (c *B2OutputClient) IsMissing(filePath string) bool {
	obj := c.bucket.Object(c.prefix + filePath)
	if obj == nil {
		return true
	}

	attrs, err := obj.Attrs(context.Background())
	if err != nil {
		return true
	}

	return attrs.Status == b2.Hider
}

type b2Writer struct {
	w      *b2.Writer
	cancel context.CancelFunc
	done   bool
}

func (w *b2Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

func (w *b2Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	defer w.cancel()

	if err := w.w.Close(); err != nil {
		return fmt.Errorf("upload object to B2: %w", err)
	}
	return nil
}

// Abort cancels the upload before it is committed.
func (w *b2Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.cancel()
	w.w.Close()
	return nil
}
