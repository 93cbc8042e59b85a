package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Input      InputConfig       `json:"Input" validate:"required"`
	Converters []ConverterConfig `json:"Converters" validate:"required,min=1,dive"`
	// SkipUnchanged leaves an output alone when it records the same source
	// hash as the current input. Off by default: every run rewrites outputs.
	SkipUnchanged bool `json:"SkipUnchanged"`
	// FailOnError makes the run exit non-zero when any conversion failed.
	FailOnError bool   `json:"FailOnError"`
	LogLevel    string `json:"LogLevel" validate:"omitempty,oneof=debug info warn error"`
}

type InputConfig struct {
	Storage         StorageConfig `json:"Storage" validate:"required"`
	// KnownExtensions are matched case-sensitively, without the leading dot.
	KnownExtensions []string `json:"KnownExtensions" validate:"omitempty,dive,min=1"`
}

type StorageConfig struct {
	Type   string `json:"Type" validate:"required,oneof=b2 local"`
	Config any    `json:"Config" validate:"required"`
}

func (sc *StorageConfig) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Type   string          `json:"Type"`
		Config json.RawMessage `json:"Config"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	sc.Type = tmp.Type

	switch tmp.Type {
	case "b2":
		var b2Config B2Config
		if err := json.Unmarshal(tmp.Config, &b2Config); err != nil {
			return fmt.Errorf("unmarshal B2Config: %w", err)
		}
		sc.Config = &b2Config
	case "local":
		var localConfig LocalConfig
		if err := json.Unmarshal(tmp.Config, &localConfig); err != nil {
			return fmt.Errorf("unmarshal LocalConfig: %w", err)
		}
		sc.Config = &localConfig
	default:
		return fmt.Errorf("unsupported storage type: %s", tmp.Type)
	}

	return nil
}

type B2Config struct {
	BucketName     string `json:"BucketName" validate:"required,min=1"`
	Prefix         string `json:"Prefix"`
	KeyID          string `json:"KeyID" validate:"required"`
	ApplicationKey string `json:"ApplicationKey" validate:"required"`
}

type LocalConfig struct {
	Path string `json:"Path" validate:"required,min=1"`
	// MaxDepth is how many subdirectory levels an input scan descends into.
	MaxDepth                 int    `json:"MaxDepth" validate:"min=0"`
	FilePermissionMode       string `json:"FilePermissionMode"`
	DirPermissionMode        string `json:"DirPermissionMode"`
	AttributesImplementation string `json:"AttributesImplementation" validate:"omitempty,oneof=xattr none"`
}

type ConverterConfig struct {
	Type   string       `json:"Type" validate:"required,oneof=woff woff2"`
	Config any          `json:"Config" validate:"required"`
	Output OutputConfig `json:"Output" validate:"required"`
}

func (cc *ConverterConfig) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Type   string          `json:"Type"`
		Config json.RawMessage `json:"Config"`
		Output OutputConfig    `json:"Output"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	cc.Type = tmp.Type
	cc.Output = tmp.Output

	switch tmp.Type {
	case "woff":
		woffConfig := WoffConfig{}
		if len(tmp.Config) > 0 {
			if err := json.Unmarshal(tmp.Config, &woffConfig); err != nil {
				return fmt.Errorf("unmarshal WoffConfig: %w", err)
			}
		}
		cc.Config = &woffConfig
	case "woff2":
		woff2Config := Woff2Config{Compressor: "exec"}
		if len(tmp.Config) > 0 {
			if err := json.Unmarshal(tmp.Config, &woff2Config); err != nil {
				return fmt.Errorf("unmarshal Woff2Config: %w", err)
			}
		}
		cc.Config = &woff2Config
	default:
		return fmt.Errorf("unsupported converter type: %s", tmp.Type)
	}

	return nil
}

type WoffConfig struct {
	ReorderTables bool `json:"ReorderTables"`
}

type Woff2Config struct {
	// Compressor is "exec" for an external woff2_compress style program or
	// "builtin" for the in-process encoder.
	Compressor     string `json:"Compressor" validate:"required,oneof=exec builtin"`
	ExecutablePath string `json:"ExecutablePath" validate:"required_if=Compressor exec"`
	// ScratchDir is where per-file scratch directories are created; the
	// system temp directory when empty.
	ScratchDir     string `json:"ScratchDir"`
	TimeoutSeconds int    `json:"TimeoutSeconds" validate:"min=0"`
}

type OutputConfig struct {
	Storage StorageConfig `json:"Storage" validate:"required"`
}

func LoadConfig(path string, config *Config) error {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	expandedFileBytes := []byte(os.ExpandEnv(string(fileBytes)))

	if err = json.Unmarshal(expandedFileBytes, config); err != nil {
		return err
	}

	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Input.KnownExtensions) == 0 {
		c.Input.KnownExtensions = []string{"otf"}
	}
	for i, ext := range c.Input.KnownExtensions {
		c.Input.KnownExtensions[i] = strings.TrimPrefix(ext, ".")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func InitConfig(path string) (*Config, error) {
	config := &Config{}
	if err := LoadConfig(path, config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}
