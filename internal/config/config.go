/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type EditorConfig struct {
	// ArrowTimeoutMs clears a half-drawn link after this long; 0 disables.
	ArrowTimeoutMs int `yaml:"arrow_timeout_ms"`
	UndoMaxBytes   int `yaml:"undo_max_bytes"`
	UndoMaxPerPage int `yaml:"undo_max_per_page"`
	UndoCoalesceMs int `yaml:"undo_coalesce_ms"`
	// SnapshotKeep is how many persisted page snapshots the index keeps per page.
	SnapshotKeep int `yaml:"snapshot_keep"`
}

type ExportConfig struct {
	DPI        int     `yaml:"dpi"`
	Margin     float64 `yaml:"margin"`
	DrawLinks  bool    `yaml:"draw_links"`
	DefaultDir string  `yaml:"default_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			ArrowTimeoutMs: 30000,
			UndoMaxBytes:   16 * 1024 * 1024,
			UndoMaxPerPage: 100,
			UndoCoalesceMs: 250,
			SnapshotKeep:   50,
		},
		Export:  ExportConfig{DPI: 72, Margin: 100, DrawLinks: true, DefaultDir: "exports"},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "DCF_CONFIG"
	EnvArrowTimeout = "DCF_ARROW_TIMEOUT_MS"
	EnvExportDPI    = "DCF_EXPORT_DPI"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "DCF_LOG_LEVEL"
	EnvLogFormat = "DCF_LOG_FORMAT"
	EnvLogSource = "DCF_LOG_SOURCE"
	EnvLogFile   = "DCF_LOG_FILE"
)

// ConfigPath returns the per-user config file path. DCF_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Docflow")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Docflow")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "docflow")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is reported as an error together with the defaults-plus-env config.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			parseErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Editor.ArrowTimeoutMs != 0 {
		dst.Editor.ArrowTimeoutMs = src.Editor.ArrowTimeoutMs
	}
	if src.Editor.UndoMaxBytes != 0 {
		dst.Editor.UndoMaxBytes = src.Editor.UndoMaxBytes
	}
	if src.Editor.UndoMaxPerPage != 0 {
		dst.Editor.UndoMaxPerPage = src.Editor.UndoMaxPerPage
	}
	if src.Editor.UndoCoalesceMs != 0 {
		dst.Editor.UndoCoalesceMs = src.Editor.UndoCoalesceMs
	}
	if src.Editor.SnapshotKeep != 0 {
		dst.Editor.SnapshotKeep = src.Editor.SnapshotKeep
	}
	if src.Export.DPI != 0 {
		dst.Export.DPI = src.Export.DPI
	}
	if src.Export.Margin != 0 {
		dst.Export.Margin = src.Export.Margin
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Export.DrawLinks = src.Export.DrawLinks
	if strings.TrimSpace(src.Export.DefaultDir) != "" {
		dst.Export.DefaultDir = strings.TrimSpace(src.Export.DefaultDir)
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvArrowTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Editor.ArrowTimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDPI)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Export.DPI = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "editor.arrow_timeout_ms":
		env = EnvArrowTimeout
	case "export.dpi":
		env = EnvExportDPI
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// ArrowTimeout returns the link gesture timeout as a duration.
func (e EditorConfig) ArrowTimeout() time.Duration {
	if e.ArrowTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(e.ArrowTimeoutMs) * time.Millisecond
}

// UndoCoalesce returns the undo coalescing window.
func (e EditorConfig) UndoCoalesce() time.Duration {
	return time.Duration(e.UndoCoalesceMs) * time.Millisecond
}
