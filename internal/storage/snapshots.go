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
	"time"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(page_id, ts, data_blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, data_blob FROM snapshots WHERE page_id = ? ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT ts, data_blob FROM snapshots WHERE page_id = ? ORDER BY ts DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE page_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE page_id = ? ORDER BY ts DESC LIMIT ?
)`

// snapshotTSLayout is fixed width so timestamps sort lexicographically.
const snapshotTSLayout = "2006-01-02T15:04:05.000000000Z07:00"

// PageSnapshot is one persisted state of a page's data.
type PageSnapshot struct {
	TS   time.Time
	Blob []byte
}

// SaveSnapshot persists a page data blob with a timestamp.
func SaveSnapshot(ctx context.Context, h *DocumentHandle, pageID string, blob []byte, ts time.Time) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertSnapshotSQL, pageID, ts.UTC().Format(snapshotTSLayout), blob)
	return err
}

// GetLatestSnapshot returns the latest snapshot blob for a page or nil if none.
func GetLatestSnapshot(ctx context.Context, h *DocumentHandle, pageID string) ([]byte, time.Time, error) {
	if h == nil {
		return nil, time.Time{}, errors.New("nil DocumentHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL, pageID).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return blob even if ts parse fails
	}
	return blob, ts, nil
}

// ListSnapshots returns up to limit most recent snapshots for a page, newest first.
func ListSnapshots(ctx context.Context, h *DocumentHandle, pageID string, limit int) ([]PageSnapshot, error) {
	if h == nil {
		return nil, errors.New("nil DocumentHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, pageID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []PageSnapshot
	for rows.Next() {
		var tsStr string
		var blob []byte
		if err := rows.Scan(&tsStr, &blob); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, PageSnapshot{TS: ts, Blob: blob})
	}
	return out, rows.Err()
}

// PruneOldSnapshots keeps at most keepLast snapshots for the page and deletes older ones.
func PruneOldSnapshots(ctx context.Context, h *DocumentHandle, pageID string, keepLast int) (int64, error) {
	if h == nil {
		return 0, errors.New("nil DocumentHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, pageID, pageID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
