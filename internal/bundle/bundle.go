/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bundle packs a document directory into a single .zip for handing it
// to someone else, and unpacks such a zip into a new document directory.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "docflow/internal/log"
	"docflow/internal/storage"
)

// InfoFileName is the human-readable note at the root of every bundle.
const InfoFileName = "docflow.bundle.txt"

// ErrNoManifest is returned when a bundle carries no document manifest.
var ErrNoManifest = errors.New("bundle has no document manifest")

// packed lists what goes into a bundle, relative to the document root. The
// index and backups are local state and are rebuilt on the receiving side.
var packed = []string{storage.ManifestFileName, storage.ExportsDirName}

// Pack zips the manifest and the exports folder of the document at root into
// destZip and returns the number of files added besides the info note.
func Pack(root, destZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "pack").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return 0, errors.New("document root is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return 0, errors.New("destination zip path is required")
	}
	h, err := storage.Open(root)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZip)
	zf, err := os.Create(destZip)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	zw := zip.NewWriter(zf)

	added, err := writeBundle(zw, h)
	if cerr := zw.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("finish zip: %w", cerr)
	}
	if cerr := zf.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close zip: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(destZip)
		l.Error("bundle build failed", slog.Any("err", err))
		return 0, err
	}
	l.Info("bundle packed", slog.Int("files", added), slog.String("zip", destZip))
	return added, nil
}

func writeBundle(zw *zip.Writer, h *storage.DocumentHandle) (int, error) {
	info := fmt.Sprintf("Docflow document bundle\nCreated: %s\nDocument: %s\nPages: %d\n\nUnpack with: docflow unpack <this.zip> <dir>\n",
		time.Now().Format(time.RFC3339), h.Document.Name, len(h.Document.Pages))
	w, err := zw.Create(InfoFileName)
	if err != nil {
		return 0, fmt.Errorf("add info: %w", err)
	}
	if _, err := io.WriteString(w, info); err != nil {
		return 0, fmt.Errorf("write info: %w", err)
	}

	added := 0
	for _, top := range packed {
		start := filepath.Join(h.Root, top)
		if _, err := os.Stat(start); errors.Is(err, os.ErrNotExist) {
			continue
		}
		err := filepath.Walk(start, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(h.Root, p)
			if err != nil {
				return err
			}
			if err := addFile(zw, p, filepath.ToSlash(rel)); err != nil {
				return err
			}
			added++
			return nil
		})
		if err != nil {
			return added, fmt.Errorf("build zip: %w", err)
		}
	}
	return added, nil
}

func addFile(zw *zip.Writer, src, name string) error {
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(fw, f)
	return err
}

// Unpack extracts a bundle into root and opens the result, so a bundle with
// an invalid manifest is reported. Existing files are not overwritten; they
// are skipped. Entries that would land outside root are skipped as well.
func Unpack(zipPath, root string) (*storage.DocumentHandle, int, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "unpack").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return nil, 0, errors.New("document root is required")
	}
	if strings.TrimSpace(zipPath) == "" {
		return nil, 0, errors.New("zip path is required")
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	hasManifest := false
	for _, f := range r.File {
		if f.Name == storage.ManifestFileName {
			hasManifest = true
		}
	}
	if !hasManifest {
		return nil, 0, ErrNoManifest
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, 0, fmt.Errorf("ensure root: %w", err)
	}

	installed := 0
	for _, f := range r.File {
		if f.Name == InfoFileName {
			continue
		}
		rel, ok := safeName(f.Name)
		if !ok {
			l.Warn("skip unsafe entry", slog.String("name", f.Name))
			continue
		}
		target := filepath.Join(root, rel)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, installed, err
			}
			continue
		}
		if err := extract(f, target); err != nil {
			return nil, installed, err
		}
		installed++
	}
	h, err := storage.Open(root)
	if err != nil {
		return nil, installed, fmt.Errorf("unpacked document: %w", err)
	}
	l.Info("bundle unpacked", slog.Int("files", installed))
	return h, installed, nil
}

// safeName turns a zip entry name into a relative OS path, refusing absolute
// names and names that climb out of the destination.
func safeName(name string) (string, bool) {
	if name == "" || strings.Contains(name, "\\") || path.IsAbs(name) {
		return "", false
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") || filepath.IsAbs(filepath.FromSlash(clean)) {
		return "", false
	}
	return filepath.FromSlash(clean), true
}

func extract(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
