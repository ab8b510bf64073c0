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
	"path/filepath"
	"testing"
	"time"
)

func TestSnapshotsCRUD(t *testing.T) {
	root := t.TempDir()
	h := &DocumentHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName)}
	ctx := context.Background()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("db.Close error: %v", err)
	}
	blob, _, err := GetLatestSnapshot(ctx, h, "p1")
	if err != nil || blob != nil {
		t.Fatalf("expected no snapshot yet, got %q err %v", blob, err)
	}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := SaveSnapshot(ctx, h, "p1", []byte("hello"), base); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	blob, ts, err := GetLatestSnapshot(ctx, h, "p1")
	if err != nil || string(blob) != "hello" {
		t.Fatalf("GetLatestSnapshot got %q err %v", string(blob), err)
	}
	if !ts.Equal(base) {
		t.Fatalf("timestamp = %v, want %v", ts, base)
	}
	for i := 0; i < 5; i++ {
		b := []byte{byte('a' + i)}
		if err := SaveSnapshot(ctx, h, "p1", b, base.Add(time.Duration(i+1)*time.Millisecond)); err != nil {
			t.Fatalf("SaveSnapshot %d: %v", i, err)
		}
	}
	// other pages are kept apart
	if err := SaveSnapshot(ctx, h, "p2", []byte("other"), base); err != nil {
		t.Fatalf("SaveSnapshot p2: %v", err)
	}
	list, err := ListSnapshots(ctx, h, "p1", 10)
	if err != nil || len(list) != 6 {
		t.Fatalf("ListSnapshots got %d err %v", len(list), err)
	}
	if string(list[0].Blob) != "e" {
		t.Fatalf("expected newest first, got %q", list[0].Blob)
	}
	n, err := PruneOldSnapshots(ctx, h, "p1", 3)
	if err != nil {
		t.Fatalf("PruneOldSnapshots: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deletions, got %d", n)
	}
	list, err = ListSnapshots(ctx, h, "p1", 10)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListSnapshots after prune got %d err %v", len(list), err)
	}
	list, err = ListSnapshots(ctx, h, "p2", 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("prune touched another page: %d %v", len(list), err)
	}
}

func TestSnapshotsNilHandle(t *testing.T) {
	if err := SaveSnapshot(context.Background(), nil, "p", nil, time.Now()); err == nil {
		t.Fatalf("expected error for nil handle")
	}
}
