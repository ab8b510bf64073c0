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
	"testing"
	"time"

	"docflow/internal/domain"
)

func TestWatchReloadsManifest(t *testing.T) {
	root := t.TempDir()
	h, err := Init(root, sampleDocument())
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan domain.Document, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, root, func(d domain.Document) { got <- d })
	}()
	// give the watcher time to register
	time.Sleep(150 * time.Millisecond)

	h.Document.Name = "Renamed elsewhere"
	if err := Save(h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	select {
	case d := <-got:
		if d.Name != "Renamed elsewhere" {
			t.Fatalf("reloaded name = %q", d.Name)
		}
	case <-ctx.Done():
		t.Fatalf("no reload received")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned %v", err)
	}
}
