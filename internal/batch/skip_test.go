package batch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/output"
	"github.com/SayaAndy/saya-today-font-converter/internal/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInput struct {
	files       []string
	hashes      map[string]string
	metadataErr error
}

func (f *fakeInput) Scan() ([]string, error) {
	return f.files, nil
}

func (f *fakeInput) ReadMetadata(path string) (*input.MetadataStruct, error) {
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	return &input.MetadataStruct{Name: path, StorageType: "fake", Hash: f.hashes[path]}, nil
}

func (f *fakeInput) GetReader(path string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte(path))), nil
}

type fakeConverter struct {
	format    string
	outputs   map[string]string
	processed []string
	failWith  error
}

func (f *fakeConverter) Format() string        { return f.format }
func (f *fakeConverter) CheckAvailable() error { return nil }

func (f *fakeConverter) DeductOutputPath(inputPath string) string {
	return inputPath + "." + f.format
}

func (f *fakeConverter) Process(_ context.Context, inputMetadata *input.MetadataStruct, reader io.Reader, outputName string) error {
	if f.failWith != nil {
		return f.failWith
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if string(data) != inputMetadata.Name {
		return errors.New("unexpected input bytes")
	}
	f.processed = append(f.processed, inputMetadata.Name)
	f.outputs[outputName] = inputMetadata.Hash
	return nil
}

func (f *fakeConverter) ReadMetadata(path string) (*output.MetadataStruct, error) {
	hash, ok := f.outputs[path]
	if !ok {
		return nil, errors.New("no such output")
	}
	return &output.MetadataStruct{Name: path, HashOriginal: hash}, nil
}

func (f *fakeConverter) IsMissing(path string) bool {
	_, ok := f.outputs[path]
	return !ok
}

func newFakeConverter(format string) *fakeConverter {
	return &fakeConverter{format: format, outputs: map[string]string{}}
}

func TestRun_ProcessesInputsInSortedOrder(t *testing.T) {
	in := &fakeInput{files: []string{"b.otf", "sub/a.otf", "a.otf"}}
	conv := newFakeConverter("woff")

	report, err := NewRunner(in, []converter.Converter{conv}, Options{Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.otf", "b.otf", "sub/a.otf"}, conv.processed)
	assert.Equal(t, 3, report.Succeeded["woff"])
}

func TestRun_SkipUnchanged(t *testing.T) {
	in := &fakeInput{
		files:  []string{"a.otf", "b.otf"},
		hashes: map[string]string{"a.otf": "h-a", "b.otf": "h-b2"},
	}
	conv := newFakeConverter("woff")
	conv.outputs["a.otf.woff"] = "h-a"
	conv.outputs["b.otf.woff"] = "h-b1"

	report, err := NewRunner(in, []converter.Converter{conv}, Options{SkipUnchanged: true, Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"b.otf"}, conv.processed)
	assert.Equal(t, 1, report.Skipped["woff"])
	assert.Equal(t, 1, report.Succeeded["woff"])
	assert.Equal(t, "h-b2", conv.outputs["b.otf.woff"])
}

func TestRun_WithoutSkipUnchangedRewritesEverything(t *testing.T) {
	in := &fakeInput{files: []string{"a.otf"}, hashes: map[string]string{"a.otf": "h-a"}}
	conv := newFakeConverter("woff")
	conv.outputs["a.otf.woff"] = "h-a"

	report, err := NewRunner(in, []converter.Converter{conv}, Options{Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.otf"}, conv.processed)
	assert.Zero(t, report.Skipped["woff"])
}

func TestRun_UnreadableInputCountsForEveryFormat(t *testing.T) {
	in := &fakeInput{files: []string{"a.otf", "b.otf"}, metadataErr: errors.New("permission denied")}
	woff, woff2 := newFakeConverter("woff"), newFakeConverter("woff2")

	report, err := NewRunner(in, []converter.Converter{woff, woff2}, Options{Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Failed["woff"])
	assert.Equal(t, 2, report.Failed["woff2"])
	assert.Len(t, report.Failures, 4)
	assert.Empty(t, woff.processed)
}

func TestRun_FailureIsRecordedPerFormat(t *testing.T) {
	in := &fakeInput{files: []string{"a.otf"}}
	woff, woff2 := newFakeConverter("woff"), newFakeConverter("woff2")
	woff2.failWith = errors.New("compressor exited with code 1")

	report, err := NewRunner(in, []converter.Converter{woff, woff2}, Options{Logger: quietLogger()}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded["woff"])
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "woff2", report.Failures[0].Format)
	assert.EqualError(t, report.Failures[0].Err, "compressor exited with code 1")
}
