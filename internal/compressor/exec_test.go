package compressor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "woff2_compress")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newExec(t *testing.T, path string) Compressor {
	t.Helper()
	c, err := NewExecCompressor(&config.Woff2Config{Compressor: "exec", ExecutablePath: path})
	require.NoError(t, err)
	return c
}

func TestNewExecCompressor_Validation(t *testing.T) {
	_, err := NewExecCompressor(&config.Woff2Config{Compressor: "builtin", ExecutablePath: "/bin/true"})
	assert.Error(t, err)

	_, err = NewExecCompressor(&config.Woff2Config{Compressor: "exec"})
	assert.Error(t, err)
}

func TestExecCompressor_CheckAvailable(t *testing.T) {
	script := writeScript(t, "exit 0")

	assert.NoError(t, newExec(t, script).CheckAvailable())
	assert.NoError(t, newExec(t, "sh").CheckAvailable())

	err := newExec(t, filepath.Join(t.TempDir(), "missing", "woff2_compress")).CheckAvailable()
	assert.ErrorIs(t, err, ErrCompressorMissing)

	err = newExec(t, "definitely-not-a-woff2-compressor").CheckAvailable()
	assert.ErrorIs(t, err, ErrCompressorMissing)

	err = newExec(t, t.TempDir()).CheckAvailable()
	assert.ErrorIs(t, err, ErrCompressorMissing)
}

func TestExecCompressor_Success(t *testing.T) {
	script := writeScript(t, `echo "compressing $1"; cp "$1" "${1%.*}.woff2"`)
	input := filepath.Join(t.TempDir(), "temp_My Font.otf")
	require.NoError(t, os.WriteFile(input, []byte("font bytes"), 0o644))

	result, err := newExec(t, script).Compress(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, "compressing "+input+"\n", result.Stdout)
	assert.Empty(t, result.Stderr)

	out, err := os.ReadFile(OutputPath(input))
	require.NoError(t, err)
	assert.Equal(t, "font bytes", string(out))
}

func TestExecCompressor_NonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "bad font: $1" >&2; exit 3`)

	result, err := newExec(t, script).Compress(context.Background(), "/fonts/temp_x.otf")
	require.NoError(t, err)

	assert.False(t, result.Success())
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "bad font: /fonts/temp_x.otf\n", result.Stderr)
}

func TestExecCompressor_CanceledContext(t *testing.T) {
	script := writeScript(t, "exit 0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newExec(t, script).Compress(ctx, "/fonts/temp_x.otf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/tmp/scratch/temp_Font.otf", "/tmp/scratch/temp_Font.woff2"},
		{"temp_My Font.otf", "temp_My Font.woff2"},
		{"/tmp/scratch/temp_font.v2.ttf", "/tmp/scratch/temp_font.v2.woff2"},
		{"/tmp/noext", "/tmp/noext.woff2"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, OutputPath(test.input), "OutputPath(%s)", test.input)
	}
}
