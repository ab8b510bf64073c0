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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"docflow/internal/domain"
	applog "docflow/internal/log"
	"docflow/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-document ephemeral/index data under the document root.
	IndexDirName  = ".docflow"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// IndexPath returns the full path to the document's embedded index database file.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-document SQLite index exists at .docflow/index.sqlite,
// opens the database, enables WAL mode, and ensures the meta/version tables exist.
// The returned *sql.DB is ready for use. Callers may close it when no longer needed.
func InitOrOpenIndex(root string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", root),
	)
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("document root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, IndexDirName), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create %s dir: %w", IndexDirName, err)
	}

	path := IndexPath(root)
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh DB starts at schema 1 and is migrated forward like any other.
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports the schema version recorded in the index.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	cur, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// lookups by page and by field key
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_entries_page ON entries(page_id);`,
				`CREATE INDEX IF NOT EXISTS idx_entries_key ON entries(key);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates core index tables and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per searchable text: document name, page field values, changelog rows.
		`CREATE TABLE IF NOT EXISTS entries (
			entry_id INTEGER PRIMARY KEY,
			type     TEXT    NOT NULL,
			path     TEXT    NOT NULL,
			page_id  TEXT,
			key      TEXT,
			text     TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_path ON entries(path);`,

		// Contentless FTS5 index fed from entries via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_entries USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,

		// Links between pages and markers, mirrored from the manifest.
		`CREATE TABLE IF NOT EXISTS links (
			from_id   TEXT NOT NULL,
			from_kind TEXT NOT NULL,
			to_id     TEXT NOT NULL,
			to_kind   TEXT NOT NULL,
			PRIMARY KEY(from_id, to_id)
		);`,

		// Snapshots (history of page data)
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			page_id    TEXT    NOT NULL,
			ts         TEXT    NOT NULL,
			data_blob  BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_page_ts ON snapshots(page_id, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	// Triggers for contentless FTS synchronization with entries.text
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON entries BEGIN
			INSERT INTO fts_entries(rowid, text) VALUES (new.entry_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON entries BEGIN
			INSERT INTO fts_entries(fts_entries, rowid, text) VALUES ('delete', old.entry_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS entries_au AFTER UPDATE OF text ON entries BEGIN
			INSERT INTO fts_entries(fts_entries, rowid, text) VALUES ('delete', old.entry_id, old.text);
			INSERT INTO fts_entries(rowid, text) VALUES (new.entry_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and rebuilds the index if needed.
// It returns true when a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, root string, doc domain.Document) (bool, error) {
	ctx = applog.WithDocument(ctx, root)
	l := applog.WithOperation(applog.WithComponent("storage"), "index_check")
	path := IndexPath(root)
	db, err := InitOrOpenIndex(root)
	if err != nil {
		l.WarnContext(ctx, "index unreadable; rebuilding", slog.Any("err", err))
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, root, doc); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM entries LIMIT 1;`); err != nil {
			needs = true
		}
	}
	_ = db.Close()
	if !needs {
		return false, nil
	}
	l.WarnContext(ctx, "index corrupt; rebuilding", slog.String("path", path))
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, root, doc); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup in .docflow/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	bak := filepath.Join(bdir, backupName(filepath.Base(indexPath), "bak"))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// BuildIndexIfEmpty populates the index from the manifest when it holds no entries yet.
func BuildIndexIfEmpty(ctx context.Context, root string, doc domain.Document) error {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries;").Scan(&cnt); err != nil {
		return fmt.Errorf("check entries count: %w", err)
	}
	if cnt > 0 {
		return nil
	}
	return rebuildEntries(ctx, db, doc)
}

// UpdateIndex replaces the indexed content with the given manifest.
func UpdateIndex(ctx context.Context, root string, doc domain.Document) error {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := rebuildEntries(ctx, db, doc); err != nil {
		return err
	}
	applog.WithComponent("storage").DebugContext(applog.WithDocument(ctx, root), "index updated",
		slog.String("op", "index_update"), slog.Int("pages", len(doc.Pages)))
	return nil
}

// RebuildIndex drops and recreates the derived tables and rebuilds content from the manifest.
// It preserves meta/version tables and page history.
func RebuildIndex(ctx context.Context, root string, doc domain.Document) error {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS links;",
		"DROP TRIGGER IF EXISTS entries_ai;",
		"DROP TRIGGER IF EXISTS entries_ad;",
		"DROP TRIGGER IF EXISTS entries_au;",
		"DROP TABLE IF EXISTS entries;",
		"DROP TABLE IF EXISTS fts_entries;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	// indexes created by migrations went away with the table
	for _, q := range []string{
		`CREATE INDEX IF NOT EXISTS idx_entries_page ON entries(page_id);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_key ON entries(key);`,
	} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("recreate index: %w", err)
		}
	}
	return rebuildEntries(ctx, db, doc)
}

type entry struct {
	typ    string
	path   string
	pageID sql.NullString
	key    sql.NullString
	text   string
}

// documentEntries flattens the searchable text of a document. Field values are
// indexed per key; list values are joined with " | " per row.
func documentEntries(doc domain.Document) []entry {
	out := make([]entry, 0, 16)
	if s := strings.TrimSpace(doc.Name); s != "" {
		out = append(out, entry{typ: "document_name", path: "document:name", text: s})
	}
	if s := strings.TrimSpace(doc.Metadata.Notes); s != "" {
		out = append(out, entry{typ: "document_notes", path: "document:notes", text: s})
	}
	for _, pg := range doc.Pages {
		keys := make([]string, 0, len(pg.Data))
		for k := range pg.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pid := sql.NullString{String: pg.ID, Valid: true}
		for _, k := range keys {
			for i, text := range flattenValue(pg.Data[k]) {
				if text == "" {
					continue
				}
				path := fmt.Sprintf("page:%s/%s", pg.ID, k)
				if i > 0 {
					path = fmt.Sprintf("%s/%d", path, i)
				}
				out = append(out, entry{typ: pg.Kind, path: path, pageID: pid, key: sql.NullString{String: k, Valid: true}, text: text})
			}
		}
	}
	return out
}

func flattenValue(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{strings.TrimSpace(t)}
	case []string:
		return []string{strings.Join(t, " | ")}
	case [][]string:
		out := make([]string, 0, len(t))
		for _, r := range t {
			out = append(out, strings.Join(r, " | "))
		}
		return out
	case []any:
		// decoded JSON: either a row of cells or a table of rows
		var cells []string
		var rows []string
		for _, it := range t {
			switch c := it.(type) {
			case []any:
				rows = append(rows, strings.Join(flattenCells(c), " | "))
			default:
				cells = append(cells, fmt.Sprint(c))
			}
		}
		if len(rows) > 0 {
			return rows
		}
		return []string{strings.Join(cells, " | ")}
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(t)}
	}
}

func flattenCells(c []any) []string {
	out := make([]string, 0, len(c))
	for _, v := range c {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// rebuildEntries replaces the entries and links tables from the given manifest.
func rebuildEntries(ctx context.Context, db *sql.DB, doc domain.Document) error {
	rows := documentEntries(doc)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM links;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear links: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO entries(type, path, page_id, key, text) VALUES(?,?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, r.typ, r.path, r.pageID, r.key, r.text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert entry: %w", err)
		}
	}
	for _, l := range doc.Links {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO links(from_id, from_kind, to_id, to_kind) VALUES(?,?,?,?);",
			l.From.ID, l.From.Kind, l.To.ID, l.To.Kind); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert link: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
