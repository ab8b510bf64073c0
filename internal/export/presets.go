/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"docflow/internal/board"
	applog "docflow/internal/log"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across multiple formats.
//
// Path semantics:
//   - If OutDir is empty or relative, it is created under <root>/exports/<preset>/.
//   - The whole board goes to board.<format> in OutDir.
//   - With PerPage, pages also go to <format>/<n>-<kind>.<format> inside OutDir.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset      PresetName
	Formats     []string // allowed: pdf, png, svg; empty means preset defaults
	PerPage     bool
	DPIOverride int    // when > 0 overrides the preset and config DPI
	OutDir      string // base directory for outputs (created per preset if relative)
}

// Batch runs exports according to the given preset and returns every written path.
func Batch(root string, b *board.Board, opt BatchOptions, base Options) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "batch").With(
		slog.String("preset", string(opt.Preset)),
	)
	if b == nil {
		return nil, fmt.Errorf("board is nil")
	}
	names := opt.Formats
	if len(names) == 0 {
		names = presetDefaultFormats(opt.Preset)
	}
	formats := make([]Format, 0, len(names))
	for _, n := range names {
		f, err := ParseFormat(n)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
		if baseOut == "" {
			baseOut = "default"
		}
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(root, "exports", baseOut)
	}

	eo := base
	if d := presetDPI(opt.Preset); d > 0 {
		eo.DPI = d
	}
	if opt.DPIOverride > 0 {
		eo.DPI = opt.DPIOverride
	}

	var written []string
	for _, f := range formats {
		path := filepath.Join(baseOut, "board."+string(f))
		if err := ToFile(b, path, eo); err != nil {
			return written, fmt.Errorf("%s board: %w", f, err)
		}
		written = append(written, path)
		if !opt.PerPage {
			continue
		}
		paths, err := Pages(b, filepath.Join(baseOut, string(f)), f, eo)
		written = append(written, paths...)
		if err != nil {
			return written, fmt.Errorf("%s pages: %w", f, err)
		}
	}
	l.Info("batch export done", slog.String("out", baseOut), slog.Int("files", len(written)))
	return written, nil
}

// ParsePreset accepts preset names case-insensitively; empty means no preset.
func ParsePreset(s string) (PresetName, error) {
	switch p := PresetName(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PresetWeb, PresetPrint:
		return p, nil
	default:
		return "", fmt.Errorf("unknown preset: %q", s)
	}
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetDPI(p PresetName) int {
	switch p {
	case PresetWeb:
		return 96
	case PresetPrint:
		return 300
	default:
		return 0
	}
}
