/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible state blob for one page, usually the encoded page
// data as it was before an edit. Blob content is opaque to the manager; size
// is estimated as len(Blob). TS is when the snapshot was captured.
type Snapshot struct {
	PageID string
	Blob   []byte
	TS     time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerPage limits number of snapshots per page kept in memory (0 means unlimited).
	MaxPerPage int
	// MinInterval coalesces snapshots captured within the interval for the same page.
	// The earlier snapshot is kept so one undo reverts the whole burst.
	// Zero selects the default; a negative value disables coalescing.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per page with performance safeguards.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-page stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting, undo stacks only
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records the state of a page before a change. Within MinInterval
// of the previous snapshot on the same page the earlier one is kept and its
// timestamp refreshed. Clears the redo stack for that page.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo[s.PageID] = nil
	stack := m.undo[s.PageID]
	if n := len(stack); n > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		stack[n-1].TS = s.TS
		return
	}
	m.undo[s.PageID] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.PageID)
}

// Undo pops the most recent snapshot of a page. current is the state being
// left; it is pushed to the redo stack so Redo can return to it.
func (m *Manager) Undo(pageID string, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[pageID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[pageID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	current.PageID = pageID
	m.redo[pageID] = append(m.redo[pageID], current)
	return s, true
}

// Redo pops from redo and pushes current back to undo.
func (m *Manager) Redo(pageID string, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[pageID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[pageID] = r[:len(r)-1]
	current.PageID = pageID
	m.undo[pageID] = append(m.undo[pageID], current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked(pageID)
	return s, true
}

// CanUndo reports whether the page has an undo entry.
func (m *Manager) CanUndo(pageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[pageID]) > 0
}

// ClearPage clears undo/redo stacks for a page to free memory.
func (m *Manager) ClearPage(pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[pageID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, pageID)
	delete(m.redo, pageID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, pages int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, pages, totalSnapshots
}

func (m *Manager) enforceCapsLocked(pageID string) {
	// Per-page depth cap
	if m.cfg.MaxPerPage > 0 {
		stack := m.undo[pageID]
		if len(stack) > m.cfg.MaxPerPage {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerPage
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[pageID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all pages
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestPage := ""
		found := false
		var oldestTS time.Time
		for page, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestPage = page
				found = true
				oldestTS = stack[0].TS
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestPage]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestPage] = stack[1:]
		if len(m.undo[oldestPage]) == 0 {
			delete(m.undo, oldestPage)
		}
	}
}
