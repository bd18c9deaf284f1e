package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Version != configVersion {
		t.Fatalf("Version = %q, want %q", cfg.Version, configVersion)
	}
	if cfg.Model != defaultModel {
		t.Fatalf("Model = %q, want %q", cfg.Model, defaultModel)
	}
	if cfg.IndexTimeoutSeconds != defaultIndexTimeoutSeconds {
		t.Fatalf("IndexTimeoutSeconds = %d, want %d", cfg.IndexTimeoutSeconds, defaultIndexTimeoutSeconds)
	}
	if cfg.Instructions == "" {
		t.Fatal("Instructions is empty")
	}
}

func TestSaveLoadConfig(t *testing.T) {
	t.Setenv("AGSEARCH_MODEL", "")
	t.Setenv("AGSEARCH_BASE_URL", "")

	dir := t.TempDir()
	path := ConfigPath(dir)

	cfg := DefaultConfig()
	cfg.Ignore = []string{"*.tmp"}
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Model != cfg.Model {
		t.Fatalf("Model = %q, want %q", loaded.Model, cfg.Model)
	}
	if len(loaded.Ignore) != 1 || loaded.Ignore[0] != "*.tmp" {
		t.Fatalf("Ignore = %v, want [*.tmp]", loaded.Ignore)
	}
}

func TestLoadConfig_VersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("version: \"99\"\nmodel: gpt-4o\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() accepted an unsupported version")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AGSEARCH_MODEL", "gpt-4o-mini")
	t.Setenv("AGSEARCH_BASE_URL", "https://proxy.internal/v1")

	dir := t.TempDir()
	path := ConfigPath(dir)
	if err := SaveConfig(DefaultConfig(), path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Fatalf("Model = %q, want env override", cfg.Model)
	}
	if cfg.BaseURL != "https://proxy.internal/v1" {
		t.Fatalf("BaseURL = %q, want env override", cfg.BaseURL)
	}
}

func TestLoadConfig_EnvConfigPath(t *testing.T) {
	t.Setenv("AGSEARCH_MODEL", "")
	t.Setenv("AGSEARCH_BASE_URL", "")

	dir := t.TempDir()
	path := ConfigPath(dir)
	if err := SaveConfig(DefaultConfig(), path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	t.Setenv("AGSEARCH_CONFIG_PATH", path)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Model != defaultModel {
		t.Fatalf("Model = %q, want %q", cfg.Model, defaultModel)
	}
}

func TestStatePath_NextToConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := ConfigPath(dir)
	t.Setenv("AGSEARCH_CONFIG_PATH", "")

	got, err := statePath(cfgPath)
	if err != nil {
		t.Fatalf("statePath() error = %v", err)
	}
	want := filepath.Join(ConfigDir(dir), stateFileName)
	if got != want {
		t.Fatalf("statePath() = %q, want %q", got, want)
	}
}

func TestStatePath_EnvConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGSEARCH_CONFIG_PATH", ConfigPath(dir))

	got, err := statePath("")
	if err != nil {
		t.Fatalf("statePath() error = %v", err)
	}
	want := filepath.Join(ConfigDir(dir), stateFileName)
	if got != want {
		t.Fatalf("statePath() = %q, want %q", got, want)
	}
}

func TestResolveIndexTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IndexTimeoutSeconds = 1800

	tests := []struct {
		name      string
		flagSet   bool
		flagValue int
		cfg       *Config
		want      int
	}{
		{"flag wins over config", true, 120, cfg, 120},
		{"config used when flag unset", false, defaultIndexTimeoutSeconds, cfg, 1800},
		{"default when config has no value", false, defaultIndexTimeoutSeconds, &Config{}, defaultIndexTimeoutSeconds},
		{"default when config is nil", false, defaultIndexTimeoutSeconds, nil, defaultIndexTimeoutSeconds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveIndexTimeout(tt.flagSet, tt.flagValue, tt.cfg)
			if got != tt.want {
				t.Fatalf("resolveIndexTimeout() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/work/project")
	want := filepath.Join("/work/project", ".agsearch", "project.yaml")
	if got != want {
		t.Fatalf("ConfigPath() = %q, want %q", got, want)
	}
}
