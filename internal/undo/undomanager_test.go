/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func snap(id, blob string, ts time.Time) Snapshot {
	return Snapshot{PageID: id, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerPage: 10, MinInterval: 10 * time.Millisecond})
	pg := "p1"
	t0 := time.Now()
	m.PushSnapshot(snap(pg, "a", t0))
	m.PushSnapshot(snap(pg, "b", t0.Add(20*time.Millisecond)))
	if _, pages, total := m.Stats(); pages != 1 || total != 2 {
		t.Fatalf("expected 1 page and 2 snapshots, got pages=%d total=%d", pages, total)
	}
	s, ok := m.Undo(pg, snap("", "c", t0))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(pg, snap("", "b", t0))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if !m.CanUndo(pg) {
		t.Fatalf("redo should make the page undoable again")
	}
}

func TestCoalesceKeepsEarliest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerPage: 10, MinInterval: 50 * time.Millisecond})
	pg := "p2"
	t0 := time.Now()
	m.PushSnapshot(snap(pg, "1", t0))
	m.PushSnapshot(snap(pg, "2", t0.Add(10*time.Millisecond))) // coalesce
	m.PushSnapshot(snap(pg, "3", t0.Add(55*time.Millisecond))) // still within 50ms of the refreshed TS
	_, _, total := m.Stats()
	if total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(pg, Snapshot{})
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("expected earliest snapshot '1', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestNegativeIntervalDisablesCoalescing(t *testing.T) {
	m := NewManager(Config{MinInterval: -1})
	t0 := time.Now()
	m.PushSnapshot(snap("p", "1", t0))
	m.PushSnapshot(snap("p", "2", t0))
	if _, _, total := m.Stats(); total != 2 {
		t.Fatalf("expected 2 snapshots, got %d", total)
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerPage: 2, MinInterval: 1 * time.Millisecond})
	pg := "p3"
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.PushSnapshot(snap(pg, "xxxxx", t0.Add(time.Duration(i)*time.Second)))
	}
	_, _, total := m.Stats()
	if total > 2 {
		t.Fatalf("expected MaxPerPage cap to limit to 2, got %d", total)
	}
}
