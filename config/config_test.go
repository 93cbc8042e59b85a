package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validConfig = `{
  "Input": {
    "Storage": {"Type": "local", "Config": {"Path": "${FONT_ROOT}/otf"}}
  },
  "Converters": [
    {
      "Type": "woff",
      "Output": {"Storage": {"Type": "local", "Config": {"Path": "${FONT_ROOT}/woff"}}}
    },
    {
      "Type": "woff2",
      "Config": {"ExecutablePath": "${WOFF2_COMPRESS}", "TimeoutSeconds": 30},
      "Output": {
        "Storage": {
          "Type": "b2",
          "Config": {"BucketName": "fonts", "Prefix": "woff2/", "KeyID": "key", "ApplicationKey": "secret"}
        }
      }
    }
  ]
}`

func TestInitConfig(t *testing.T) {
	t.Setenv("FONT_ROOT", "/srv/fonts")
	t.Setenv("WOFF2_COMPRESS", "/usr/local/bin/woff2_compress")

	cfg, err := InitConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.IsType(t, &LocalConfig{}, cfg.Input.Storage.Config)
	assert.Equal(t, "/srv/fonts/otf", cfg.Input.Storage.Config.(*LocalConfig).Path)
	assert.Equal(t, []string{"otf"}, cfg.Input.KnownExtensions)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.SkipUnchanged)
	assert.False(t, cfg.FailOnError)

	require.Len(t, cfg.Converters, 2)

	assert.Equal(t, "woff", cfg.Converters[0].Type)
	assert.Equal(t, &WoffConfig{}, cfg.Converters[0].Config)
	assert.Equal(t, "/srv/fonts/woff", cfg.Converters[0].Output.Storage.Config.(*LocalConfig).Path)

	assert.Equal(t, "woff2", cfg.Converters[1].Type)
	assert.Equal(t, &Woff2Config{Compressor: "exec", ExecutablePath: "/usr/local/bin/woff2_compress", TimeoutSeconds: 30}, cfg.Converters[1].Config)
	assert.Equal(t, &B2Config{BucketName: "fonts", Prefix: "woff2/", KeyID: "key", ApplicationKey: "secret"}, cfg.Converters[1].Output.Storage.Config)
}

func TestInitConfig_StripsExtensionDots(t *testing.T) {
	cfg, err := InitConfig(writeConfig(t, `{
  "Input": {"Storage": {"Type": "local", "Config": {"Path": "in"}}, "KnownExtensions": [".OTF", "ttf"]},
  "Converters": [{"Type": "woff", "Output": {"Storage": {"Type": "local", "Config": {"Path": "out"}}}}],
  "LogLevel": "debug"
}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"OTF", "ttf"}, cfg.Input.KnownExtensions)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestInitConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "unsupported storage type",
			body: `{"Input": {"Storage": {"Type": "ftp", "Config": {}}}, "Converters": []}`,
		},
		{
			name: "unsupported converter type",
			body: `{
  "Input": {"Storage": {"Type": "local", "Config": {"Path": "in"}}},
  "Converters": [{"Type": "eot", "Output": {"Storage": {"Type": "local", "Config": {"Path": "out"}}}}]
}`,
		},
		{
			name: "no converters",
			body: `{"Input": {"Storage": {"Type": "local", "Config": {"Path": "in"}}}, "Converters": []}`,
		},
		{
			name: "unknown log level",
			body: `{
  "Input": {"Storage": {"Type": "local", "Config": {"Path": "in"}}},
  "Converters": [{"Type": "woff", "Output": {"Storage": {"Type": "local", "Config": {"Path": "out"}}}}],
  "LogLevel": "verbose"
}`,
		},
		{
			name: "malformed json",
			body: `{"Input": `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := InitConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestInitConfig_MissingFile(t *testing.T) {
	_, err := InitConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
