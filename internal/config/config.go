// Package config assembles the deployment configuration for webui-deploy.
//
// The built-in defaults (model.DefaultConfig) reproduce the installer's
// fixed values, so running without a config file deploys exactly what it
// always has. An optional file can override any subset of fields:
//
//   - .yaml / .yml files are parsed with gopkg.in/yaml.v3
//   - .json / .jsonc files may contain comments and trailing commas; they
//     are cleaned with github.com/tidwall/jsonc and then parsed with
//     encoding/json
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/webui-deploy/internal/docker"
	"github.com/mmr-tortoise/webui-deploy/internal/model"
)

// Format identifies a config file syntax.
type Format string

const (
	// FormatYAML is YAML, selected by the .yaml and .yml extensions.
	FormatYAML Format = "yaml"

	// FormatJSONC is JSON with comments, selected by .json and .jsonc.
	FormatJSONC Format = "jsonc"
)

// DetectFormat picks the syntax from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSONC, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q (valid: .yaml, .yml, .json, .jsonc)", filepath.Ext(path))
	}
}

// Load returns the deployment configuration. With an empty path it returns
// the validated defaults; otherwise the file at path is layered on top of
// the defaults.
//
// All failures are model.CLIError values with ExitInvalidConfig.
func Load(path string) (model.Config, error) {
	cfg := model.DefaultConfig()
	if path == "" {
		return cfg, Validate(cfg)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return model.Config{}, model.WrapCLIError(model.ExitInvalidConfig, "cannot load config file", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Config{}, model.WrapCLIError(model.ExitInvalidConfig,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return model.Config{}, model.WrapCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	cfg, err = Parse(data, format)
	if err != nil {
		return model.Config{}, model.WrapCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if err := Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// Parse decodes data in the given format on top of the defaults. Fields
// absent from data keep their default values. An empty or comment-only
// document yields the defaults.
func Parse(data []byte, format Format) (model.Config, error) {
	cfg := model.DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return model.Config{}, fmt.Errorf("invalid YAML: %w", err)
		}

	case FormatJSONC:
		// Strip // and /* */ comments and trailing commas first.
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return model.Config{}, fmt.Errorf("invalid JSON: %w", err)
		}

	default:
		return model.Config{}, fmt.Errorf("unsupported config format %q", format)
	}

	return cfg, nil
}

// Validate checks field values and the image reference syntax.
func Validate(cfg model.Config) error {
	if err := cfg.Validate(); err != nil {
		return model.WrapCLIError(model.ExitInvalidConfig, "invalid configuration", err)
	}
	if _, err := docker.ImageRef(cfg.ImageName, cfg.ImageTag); err != nil {
		return model.WrapCLIError(model.ExitInvalidConfig, "invalid configuration", err)
	}
	return nil
}
