/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docflow/internal/domain"
)

func sampleDocument() domain.Document {
	return domain.Document{
		Name:     "Handbook",
		Metadata: domain.Metadata{Author: "QA", Notes: "draft"},
		Pages: []domain.PageRecord{
			{ID: "p-title", Kind: "title", Width: 841.889, Height: 595.2756,
				Data: map[string]any{"title": "Operator handbook", "subtitle": "revision two"}},
			{ID: "p-log", Kind: "changelog", X: 1000, Width: 841.889, Height: 595.2756,
				Data: map[string]any{
					"titlerow": []string{"Version", "Description"},
					"rows":     [][]string{{"0.1", "Initial draft"}, {"0.2", "Safety chapter"}},
				}},
			{ID: "p-desc", Kind: "description", X: 2000, Width: 841.889, Height: 595.2756,
				Data: map[string]any{"title": "Goals", "text": "Explain the valve maintenance procedure"}},
		},
		Links: []domain.Link{
			{From: domain.Endpoint{ID: "m-start", Kind: "start"}, To: domain.Endpoint{ID: "p-title", Kind: "page"}},
			{From: domain.Endpoint{ID: "p-title", Kind: "page"}, To: domain.Endpoint{ID: "p-log", Kind: "page"}},
		},
		Markers: []domain.MarkerRecord{{ID: "m-start", Kind: "start", X: -200, Y: 300}},
	}
}

func TestInitCreatesStructureAndManifest(t *testing.T) {
	root := t.TempDir()
	doc := sampleDocument()

	h, err := Init(root, doc)
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	b, err := os.ReadFile(h.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got domain.Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if got.Name != doc.Name || len(got.Pages) != 3 || len(got.Links) != 2 {
		t.Fatalf("manifest mismatch: %+v", got)
	}
	for _, d := range []string{ExportsDirName, BackupsDirName} {
		p := filepath.Join(root, d)
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", p)
		}
	}
}

func TestInitRequiresRoot(t *testing.T) {
	if _, err := Init("  ", sampleDocument()); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	h, err := Init(root, sampleDocument())
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	h.Document.Metadata.Notes = "changed"
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	baks, err := Backups(root)
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(baks) == 0 {
		t.Fatalf("expected at least one backup file, found 0")
	}
	if !strings.HasPrefix(filepath.Base(baks[0]), ManifestFileName+".") {
		t.Fatalf("unexpected backup name %s", baks[0])
	}
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	root := t.TempDir()
	h, err := Init(root, sampleDocument())
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	h.Document.Pages[0].Kind = "poster"
	if err := Save(h); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("Save error = %v, want ErrInvalidDocument", err)
	}
	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.Document.Pages[0].Kind != "title" {
		t.Fatalf("invalid document reached disk")
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	h, err := Init(root, sampleDocument())
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	h.Document.Metadata.Notes = "touch"
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(h.ManifestPath, []byte("{ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened.Document.Name != "Handbook" {
		t.Fatalf("opened document name mismatch: got %q", opened.Document.Name)
	}
}

func TestOpenWithoutBackupsFails(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestFileName), []byte(`{"name": 3}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(root); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	h, err := Init(t.TempDir(), sampleDocument())
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(h, dst); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if h.Root != dst {
		t.Fatalf("handle root not updated: %s", h.Root)
	}
	if _, err := Open(dst); err != nil {
		t.Fatalf("Open copy: %v", err)
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	root := t.TempDir()
	h, err := Init(root, sampleDocument())
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	h.Document.Name = "Unsaved edit"

	path, err := AutosaveCrashSnapshot(h)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got domain.Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if got.Name != "Unsaved edit" {
		t.Fatalf("snapshot content mismatch: got %q", got.Name)
	}
	opened, err := Open(root)
	if err != nil || opened.Document.Name != "Handbook" {
		t.Fatalf("crash snapshot must not replace the manifest: %v %q", err, opened.Document.Name)
	}
}
