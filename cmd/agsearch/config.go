// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/agsearch/internal/errors"
)

const (
	defaultConfigDir  = ".agsearch"
	defaultConfigFile = "project.yaml"
	stateFileName     = "state.json"
	configVersion     = "1"

	defaultModel         = "gpt-4o"
	defaultAssistantName = "Doc Search Assistant"
	defaultStoreName     = "agsearch_docs"

	defaultIndexTimeoutSeconds = 600
)

// defaultInstructions is the fixed system prompt given to the assistant.
const defaultInstructions = `You are a helpful assistant that answers questions based on the provided documents.

When answering:
- Search the uploaded documents for relevant information
- Base your answer only on what you find in the documents
- If the answer isn't in the documents, say so
- Be concise and direct`

// Config represents the .agsearch/project.yaml configuration file.
//
// The API key is deliberately not part of the file; it comes from the
// OPENAI_API_KEY environment variable only.
type Config struct {
	Version             string   `yaml:"version"`
	Model               string   `yaml:"model"`
	AssistantName       string   `yaml:"assistant_name"`
	VectorStoreName     string   `yaml:"vector_store_name"`
	Instructions        string   `yaml:"instructions"`
	IndexTimeoutSeconds int      `yaml:"index_timeout_seconds"`
	BaseURL             string   `yaml:"base_url,omitempty"` // Service endpoint override
	Ignore              []string `yaml:"ignore,omitempty"`   // Extra gitignore-style patterns
}

// DefaultConfig returns a config with the defaults used by init.
func DefaultConfig() *Config {
	return &Config{
		Version:             configVersion,
		Model:               defaultModel,
		AssistantName:       defaultAssistantName,
		VectorStoreName:     defaultStoreName,
		Instructions:        defaultInstructions,
		IndexTimeoutSeconds: defaultIndexTimeoutSeconds,
	}
}

// LoadConfig loads configuration from the specified path or finds it by
// walking up from the working directory.
//
// Environment variables are applied on top of the file afterwards.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("AGSEARCH_CONFIG_PATH")
	}
	if configPath == "" {
		var err error
		configPath, err = findConfigFile()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path comes from user config or discovery
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", configPath),
			"Check file permissions and ensure the file exists",
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or re-run 'agsearch init' to recreate", configPath),
			err,
		)
	}

	if cfg.Version != configVersion {
		return nil, errors.NewConfigError(
			"Unsupported configuration version",
			fmt.Sprintf("Config version '%s' is not supported (expected '%s')", cfg.Version, configVersion),
			"Re-run 'agsearch init' to regenerate the configuration file",
			nil,
		)
	}

	cfg.applyEnvOverrides()

	return &cfg, nil
}

// SaveConfig writes the configuration to the specified path as YAML.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug. Please report it with your configuration details",
			err,
		)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewPermissionError(
			"Cannot create configuration directory",
			fmt.Sprintf("Permission denied creating %s", dir),
			"Check directory permissions or run with appropriate privileges",
			err,
		)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewPermissionError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", configPath),
			"Check file permissions and ensure sufficient disk space",
			err,
		)
	}

	return nil
}

// ConfigPath returns the path to the config file in the given directory.
func ConfigPath(dir string) string {
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile)
}

// ConfigDir returns the path to the .agsearch directory in the given directory.
func ConfigDir(dir string) string {
	return filepath.Join(dir, defaultConfigDir)
}

// statePath resolves the state file location: it always sits next to the
// project.yaml it belongs to.
//
// When no configuration exists yet (first init), the state lands in
// .agsearch/ under the working directory.
func statePath(configPath string) (string, error) {
	resolved, err := resolvedConfigPath(configPath)
	if err == nil {
		return filepath.Join(filepath.Dir(resolved), stateFileName), nil
	}

	cwd, cwdErr := os.Getwd()
	if cwdErr != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"This is unexpected. Please report this issue if it persists",
			cwdErr,
		)
	}
	return filepath.Join(ConfigDir(cwd), stateFileName), nil
}

// resolveIndexTimeout picks the indexing timeout in seconds: an explicit
// --index-timeout flag wins, then the configured value, then the default.
func resolveIndexTimeout(flagSet bool, flagValue int, cfg *Config) int {
	if flagSet {
		return flagValue
	}
	if cfg != nil && cfg.IndexTimeoutSeconds > 0 {
		return cfg.IndexTimeoutSeconds
	}
	return defaultIndexTimeoutSeconds
}

// resolvedConfigPath returns the absolute path of the active config file.
func resolvedConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return absPath(configPath)
	}
	if envPath := os.Getenv("AGSEARCH_CONFIG_PATH"); envPath != "" {
		return absPath(envPath)
	}
	path, err := findConfigFile()
	if err != nil {
		return "", err
	}
	return absPath(path)
}

// findConfigFile searches for .agsearch/project.yaml in the current and
// parent directories.
func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		)
	}

	for {
		configPath := ConfigPath(dir)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.NewConfigError(
		"Configuration not found",
		"No .agsearch/project.yaml file found in current directory or any parent directory",
		"Run 'agsearch init <folder>' to create one",
		nil,
	)
}

// applyEnvOverrides applies environment variable overrides on top of the
// file-based configuration.
//
// Supported environment variables:
//   - AGSEARCH_MODEL: Override the assistant model
//   - AGSEARCH_BASE_URL: Override the service endpoint
func (c *Config) applyEnvOverrides() {
	if model := os.Getenv("AGSEARCH_MODEL"); model != "" {
		c.Model = model
	}
	if url := os.Getenv("AGSEARCH_BASE_URL"); url != "" {
		c.BaseURL = url
	}
}

func absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
