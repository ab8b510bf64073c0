/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bundle

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docflow/internal/domain"
	"docflow/internal/storage"
)

func newDocument(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "doc")
	doc := domain.Document{
		Name: "Bundled",
		Pages: []domain.PageRecord{{ID: "p1", Kind: "title", Width: 100, Height: 80,
			Data: map[string]any{"title": "Hello", "subtitle": ""}}},
	}
	if _, err := storage.Init(root, doc); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, storage.ExportsDirName, "board.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return root
}

func TestPackAndUnpack(t *testing.T) {
	root := newDocument(t)
	zipPath := filepath.Join(t.TempDir(), "out.zip")
	added, err := Pack(root, zipPath)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want manifest and one export", added)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	_ = r.Close()
	for _, want := range []string{InfoFileName, storage.ManifestFileName, "exports/board.svg"} {
		if !names[want] {
			t.Fatalf("zip missing %s: %v", want, names)
		}
	}
	for n := range names {
		if filepath.Dir(n) == storage.BackupsDirName {
			t.Fatalf("backups must not be packed: %s", n)
		}
	}

	dst := filepath.Join(t.TempDir(), "copy")
	h, installed, err := Unpack(zipPath, dst)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if installed != 2 {
		t.Fatalf("installed = %d", installed)
	}
	if h.Document.Name != "Bundled" || h.Document.Pages[0].Data["title"] != "Hello" {
		t.Fatalf("unpacked document: %+v", h.Document)
	}
	if _, err := os.Stat(filepath.Join(dst, "exports", "board.svg")); err != nil {
		t.Fatalf("export missing: %v", err)
	}
}

func TestPackArgs(t *testing.T) {
	if _, err := Pack("", ""); err == nil {
		t.Fatalf("expected error on empty args")
	}
	if _, err := Pack(t.TempDir(), filepath.Join(t.TempDir(), "x.zip")); err == nil {
		t.Fatalf("expected error for a directory without a document")
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	zpath := filepath.Join(t.TempDir(), "pack.zip")
	f, err := os.Create(zpath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}
	return zpath
}

func TestUnpack_ZipSlipAndSkipExisting(t *testing.T) {
	zpath := writeZip(t, map[string]string{
		"../evil.txt":            "nope",
		"/abs.txt":               "nope",
		storage.ManifestFileName: `{"name":"Zipped","pages":[]}`,
		"exports/keep.txt":       "from zip",
	})
	parent := t.TempDir()
	root := filepath.Join(parent, "doc")
	existing := filepath.Join(root, "exports", "keep.txt")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(existing, []byte("existing"), 0o644); err != nil {
		t.Fatalf("precreate file: %v", err)
	}

	h, installed, err := Unpack(zpath, root)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if installed != 1 || h.Document.Name != "Zipped" {
		t.Fatalf("installed = %d, name = %q", installed, h.Document.Name)
	}
	if _, err := os.Stat(filepath.Join(parent, "evil.txt")); err == nil {
		t.Fatalf("zip slip entry was extracted")
	}
	if b, _ := os.ReadFile(existing); string(b) != "existing" {
		t.Fatalf("existing file overwritten: %q", b)
	}
}

func TestUnpack_RequiresValidManifest(t *testing.T) {
	if _, _, err := Unpack(writeZip(t, map[string]string{"notes.txt": "x"}), t.TempDir()); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("err = %v, want ErrNoManifest", err)
	}
	bad := writeZip(t, map[string]string{storage.ManifestFileName: `{"name":"x","pages":[{"id":"a","kind":"poster","x":0,"y":0,"width":1,"height":1}]}`})
	if _, _, err := Unpack(bad, t.TempDir()); err == nil {
		t.Fatalf("expected invalid manifest to be reported")
	}
}
