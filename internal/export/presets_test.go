/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBatch_WebPreset(t *testing.T) {
	root := t.TempDir()
	written, err := Batch(root, sampleBoard(t), BatchOptions{Preset: PresetWeb, PerPage: true, DPIOverride: 24}, Options{Links: true})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	checks := []string{
		filepath.Join(root, "exports", "web", "board.png"),
		filepath.Join(root, "exports", "web", "board.svg"),
		filepath.Join(root, "exports", "web", "png", "01-title.png"),
		filepath.Join(root, "exports", "web", "svg", "03-description.svg"),
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
	if len(written) != 8 {
		t.Fatalf("written = %d files, want 8", len(written))
	}
}

func TestBatch_PrintPresetExplicitDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "print-run")
	_, err := Batch(root, sampleBoard(t), BatchOptions{Preset: PresetPrint, Formats: []string{"pdf"}, OutDir: out}, Options{})
	if err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "board.pdf")); err != nil {
		t.Fatalf("missing pdf: %v", err)
	}
}

func TestBatch_UnknownFormat(t *testing.T) {
	if _, err := Batch(t.TempDir(), sampleBoard(t), BatchOptions{Formats: []string{"cbz"}}, Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParsePreset(t *testing.T) {
	if p, err := ParsePreset(" Web "); err != nil || p != PresetWeb {
		t.Fatalf("ParsePreset = %q, %v", p, err)
	}
	if _, err := ParsePreset("poster"); err == nil {
		t.Fatalf("expected error")
	}
}
