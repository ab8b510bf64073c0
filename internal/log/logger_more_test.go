/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docflow/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvLogSource, "")
	t.Setenv(config.EnvLogFile, "")
	if opts := FromEnv(); opts != (Options{Level: "info", Format: "console"}) {
		t.Fatalf("FromEnv defaults = %+v", opts)
	}

	t.Setenv(config.EnvLogLevel, "warn")
	t.Setenv(config.EnvLogSource, "true")
	if opts := FromEnv(); opts.Level != "warn" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv = %+v", opts)
	}
}

// The YAML logging section drives Init, and DCF_ variables win over the file.
func TestConfigFileAndEnvDriveInit(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "docflow.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	yml := "logging:\n  level: debug\n  format: json\n  file: " + logFile + "\n"
	if err := os.WriteFile(cfgPath, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvConfigPath, cfgPath)
	t.Setenv(config.EnvLogLevel, "warn")
	t.Setenv(config.EnvLogFile, "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := FromConfig(cfg.Logging)
	if opts.Level != "warn" || opts.Format != "json" || opts.File != logFile {
		t.Fatalf("options = %+v", opts)
	}
	Init(opts)
	t.Cleanup(func() { Init(Options{Level: "info"}) })

	ctx := WithPage(WithDocument(context.Background(), "/docs/handbook"), "p-title")
	l := WithOperation(WithComponent("board"), "release")
	l.DebugContext(ctx, "dropped below warn")
	l.WarnContext(ctx, "stale link gesture cleared")

	b, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("want one record, got %d:\n%s", len(lines), b)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	for k, want := range map[string]string{
		"app": "docflow", "component": "board", "op": "release",
		"doc": "/docs/handbook", "page": "p-title", "msg": "stale link gesture cleared",
	} {
		if m[k] != want {
			t.Fatalf("%s = %v, want %q (%v)", k, m[k], want, m)
		}
	}
}

func TestPrettyTextHandler_Behavior(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn, AddSource: true}, w: &buf}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "export")})
	h2 = h2.WithGroup("png")

	r := slog.Record{Time: time.Now(), Level: slog.LevelError, Message: "image too large"}
	r.AddAttrs(slog.Int("dpi", 2400), slog.Float64("scale", 33.33), slog.Bool("links", true))
	if err := withEnricher(h2).Handle(WithPage(context.Background(), "p-log"), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ERR", "image too large", "component=export", "png.dpi=2400", "png.scale=33.33", "png.page=p-log"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}
