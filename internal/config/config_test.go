/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func useConfigFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if body != "" {
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	t.Setenv(EnvConfigPath, p)
	return p
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	useConfigFile(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.ArrowTimeoutMs != 30000 || cfg.Export.DPI != 72 || !cfg.Export.DrawLinks {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
}

func TestLoadMergesFile(t *testing.T) {
	useConfigFile(t, "editor:\n  arrow_timeout_ms: 500\nexport:\n  dpi: 150\n  draw_links: false\nlogging:\n  level: DEBUG\n")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.ArrowTimeout() != 500*time.Millisecond {
		t.Fatalf("ArrowTimeout = %v", cfg.Editor.ArrowTimeout())
	}
	if cfg.Export.DPI != 150 || cfg.Export.DrawLinks {
		t.Fatalf("export not merged: %#v", cfg.Export)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level not normalized: %q", cfg.Logging.Level)
	}
	if cfg.Editor.UndoMaxPerPage != 100 {
		t.Fatalf("unset fields should keep defaults: %#v", cfg.Editor)
	}
}

func TestLoadReportsMalformedFile(t *testing.T) {
	useConfigFile(t, "editor: [unclosed")
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Export.DPI != 72 {
		t.Fatalf("defaults should still be returned: %#v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	useConfigFile(t, "")
	t.Setenv(EnvArrowTimeout, "1200")
	t.Setenv(EnvExportDPI, "300")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/dcf.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.ArrowTimeoutMs != 1200 || cfg.Export.DPI != 300 {
		t.Fatalf("editor/export env overrides not applied: %#v", cfg)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/dcf.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("export.dpi"); !ok || env != EnvExportDPI {
		t.Fatalf("EnvOverrideFor(export.dpi) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("editor.undo_max_bytes"); ok {
		t.Fatalf("undo_max_bytes has no env override")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	useConfigFile(t, "")
	cfg := Defaults()
	cfg.Editor.SnapshotKeep = 7
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Editor.SnapshotKeep != 7 {
		t.Fatalf("SnapshotKeep = %d, want 7", got.Editor.SnapshotKeep)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/dcf.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/dcf.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}
