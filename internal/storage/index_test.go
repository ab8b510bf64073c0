/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestIndexInitCreatesWALAndMetaVersion(t *testing.T) {
	root := t.TempDir()
	idb, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	_ = idb.Close()
	idxPath := IndexPath(root)
	if _, err := os.Stat(idxPath); err != nil {
		t.Fatalf("index file missing at %s: %v", idxPath, err)
	}
	// Open DB and verify journal mode and tables
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(idxPath))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected 2 meta tables, got %d", cnt)
	}
	// Core schema tables, including the virtual table
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('entries','fts_entries','links','snapshots')").Scan(&cnt); err != nil {
		t.Fatalf("query core tables: %v", err)
	}
	if cnt != 4 {
		t.Fatalf("expected 4 core tables, got %d", cnt)
	}
	v, err := SchemaVersion(ctx, db)
	if err != nil || v != schemaVersion {
		t.Fatalf("SchemaVersion = %d, %v; want %d", v, err, schemaVersion)
	}
	// Insert an entry and verify the FTS triggers populate the index
	if _, err := db.ExecContext(ctx, `INSERT INTO entries(entry_id, type, path, page_id, key, text) VALUES(10001,'title','page:p1/title','p1','title','hello world');`); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	var ftsCount int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fts_entries WHERE fts_entries MATCH 'hello'").Scan(&ftsCount); err != nil {
		t.Fatalf("fts query: %v", err)
	}
	if ftsCount == 0 {
		t.Fatalf("expected FTS to find inserted entry")
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM entries WHERE entry_id = 10001`); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fts_entries WHERE fts_entries MATCH 'hello'").Scan(&ftsCount); err != nil {
		t.Fatalf("fts query: %v", err)
	}
	if ftsCount != 0 {
		t.Fatalf("expected delete trigger to drop the entry, got %d", ftsCount)
	}
}

func TestIndexRequiresRoot(t *testing.T) {
	if _, err := InitOrOpenIndex(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestDocumentEntriesFlattenValues(t *testing.T) {
	entries := documentEntries(sampleDocument())
	paths := map[string]string{}
	for _, e := range entries {
		paths[e.path] = e.text
	}
	checks := map[string]string{
		"document:name":         "Handbook",
		"document:notes":        "draft",
		"page:p-title/title":    "Operator handbook",
		"page:p-log/titlerow":   "Version | Description",
		"page:p-log/rows":       "0.1 | Initial draft",
		"page:p-log/rows/1":     "0.2 | Safety chapter",
		"page:p-desc/text":      "Explain the valve maintenance procedure",
	}
	for p, want := range checks {
		if got := paths[p]; got != want {
			t.Fatalf("entry %s = %q, want %q", p, got, want)
		}
	}
}

func TestFlattenDecodedJSON(t *testing.T) {
	rows := flattenValue([]any{[]any{"1.0", "Release"}, []any{"1.1", "Fixes"}})
	if len(rows) != 2 || rows[1] != "1.1 | Fixes" {
		t.Fatalf("rows = %v", rows)
	}
	cells := flattenValue([]any{"a", "b"})
	if len(cells) != 1 || cells[0] != "a | b" {
		t.Fatalf("cells = %v", cells)
	}
	if flattenValue(nil) != nil {
		t.Fatalf("nil should flatten to nothing")
	}
}
