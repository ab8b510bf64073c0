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
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"docflow/internal/domain"
	applog "docflow/internal/log"
)

// WatchDebounce is how long the manifest must stay quiet before a reload.
var WatchDebounce = 200 * time.Millisecond

// Watch reloads the manifest of the document at root whenever it changes on
// disk and hands each valid version to fn. Invalid intermediate states are
// logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, root string, fn func(domain.Document)) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "watch").With(slog.String("root", root))
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	// Watch the directory: saves replace the manifest by rename.
	if err := w.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	manifest := filepath.Join(abs, ManifestFileName)

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != manifest {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(WatchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			doc, err := readManifest(manifest)
			if err != nil {
				l.Warn("manifest reload skipped", slog.Any("err", err))
				continue
			}
			l.Debug("manifest reloaded", slog.Int("pages", len(doc.Pages)))
			fn(*doc)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.Any("err", err))
		}
	}
}
