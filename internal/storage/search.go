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
	"strings"
)

// SearchQuery describes a search over the embedded index.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Kinds restricts to entry types: page kinds (title, changelog, ...) or document_name/document_notes.
// Keys restricts to data keys (title, text, rows, ...). PageID restricts to one page.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text   string
	Kinds  []string
	Keys   []string
	PageID string
	Limit  int
	Offset int
}

// SearchResult represents a single match row.
// Snippet is a highlighted excerpt using [ ] markers when FTS text is used.
// PageID is empty for document-level entries.
type SearchResult struct {
	EntryID int64
	Type    string
	Path    string
	PageID  string
	Key     string
	Snippet string
}

// Search performs full-text search with optional filters over the embedded index.
// When q.Text is empty, it falls back to a non-FTS scan over entries with filters applied.
func Search(ctx context.Context, root string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("document root is required")
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT e.entry_id, e.type, e.path, COALESCE(e.page_id,''), COALESCE(e.key,''), snippet(fts_entries, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_entries JOIN entries e ON fts_entries.rowid = e.entry_id\n")
		sb.WriteString("WHERE fts_entries MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT e.entry_id, e.type, e.path, COALESCE(e.page_id,''), COALESCE(e.key,''), e.text\n")
		sb.WriteString("FROM entries e\nWHERE 1=1\n")
	}
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND e.type IN (" + placeholders(len(q.Kinds)) + ")\n")
		for _, k := range q.Kinds {
			args = append(args, k)
		}
	}
	if len(q.Keys) > 0 {
		sb.WriteString(" AND e.key IN (" + placeholders(len(q.Keys)) + ")\n")
		for _, k := range q.Keys {
			args = append(args, k)
		}
	}
	if s := strings.TrimSpace(q.PageID); s != "" {
		sb.WriteString(" AND e.page_id = ?\n")
		args = append(args, s)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY e.entry_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var sn sql.NullString
		if err := rows.Scan(&r.EntryID, &r.Type, &r.Path, &r.PageID, &r.Key, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Snippet = sn.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// LinkedFrom returns the IDs of the components a component links to, as mirrored in the index.
func LinkedFrom(ctx context.Context, root, id string) ([]string, error) {
	return linkQuery(ctx, root, `SELECT to_id FROM links WHERE from_id = ? ORDER BY to_id`, id)
}

// LinkedTo returns the IDs of the components linking to a component.
func LinkedTo(ctx context.Context, root, id string) ([]string, error) {
	return linkQuery(ctx, root, `SELECT from_id FROM links WHERE to_id = ? ORDER BY from_id`, id)
}

func linkQuery(ctx context.Context, root, q, id string) ([]string, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("id is required")
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("link query: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
