/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"docflow/internal/board"
	"docflow/internal/config"
	applog "docflow/internal/log"
	"docflow/internal/storage"
	"docflow/internal/tool"
	"docflow/internal/undo"
)

// app is the state shared by all commands of one invocation.
type app struct {
	cfg config.AppConfig
	log *slog.Logger
	h   *storage.DocumentHandle
	b   *board.Board
	now func() time.Time
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docflow",
		Short: "docflow: arrange document pages and the flow between them",
		Long: `docflow keeps a board of document pages (title page, changelog, description,
blank pages) in a directory, edits their text fields and links pages into a flow.

Usage:
  docflow init <dir> [name]
  docflow add <dir> <kind>
  docflow edit <dir> <page-id> <key> <value>
  docflow link <dir> <from-id> <to-id>
  docflow render <dir> [out]`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newMoveCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newRowCmd(a),
		newLinkCmd(a),
		newLinksCmd(a),
		newRenderCmd(a),
		newSearchCmd(a),
		newHistoryCmd(a),
		newRestoreCmd(a),
		newWatchCmd(a),
		newPackCmd(),
		newUnpackCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and initializes logging from it. A broken
// config file is reported and the defaults are used.
func (a *app) setup() error {
	cfg, err := config.Load()
	applog.Init(applog.FromConfig(cfg.Logging))
	a.cfg = cfg
	a.log = applog.WithComponent("cli")
	if a.now == nil {
		a.now = time.Now
	}
	if err != nil {
		a.log.Warn("config load failed; using defaults", slog.Any("err", err))
	}
	return nil
}

func (a *app) boardOptions() board.Options {
	e := a.cfg.Editor
	coalesce := e.UndoCoalesce()
	if coalesce == 0 {
		coalesce = -1
	}
	return board.Options{
		Tool: tool.Options{GestureTimeout: e.ArrowTimeout()},
		Undo: undo.Config{MaxBytes: e.UndoMaxBytes, MaxPerPage: e.UndoMaxPerPage, MinInterval: coalesce},
	}
}

// open loads the document at dir into a board.
func (a *app) open(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	h, err := storage.Open(abs)
	if err != nil {
		return fmt.Errorf("open %s: %w", abs, err)
	}
	b, err := board.FromDocument(h.Document, a.boardOptions())
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	a.h, a.b = h, b
	a.log.Debug("document opened", slog.String("root", abs), slog.Int("pages", len(b.Pages())))
	return nil
}

// save writes the board back to the manifest and refreshes the index. Index
// failures are logged only; the manifest is the source of truth.
func (a *app) save(ctx context.Context) error {
	ctx = applog.WithDocument(ctx, a.h.Root)
	a.h.Document = a.b.Document()
	if err := storage.Save(a.h); err != nil {
		return err
	}
	a.log.DebugContext(ctx, "manifest saved", slog.Int("pages", len(a.h.Document.Pages)))
	if err := storage.UpdateIndex(ctx, a.h.Root, a.h.Document); err != nil {
		a.log.WarnContext(ctx, "index update failed", slog.Any("err", err))
	}
	return nil
}

// crashHandle hands the crash autosave the latest editor state.
func (a *app) crashHandle() *storage.DocumentHandle {
	if a.h == nil {
		return nil
	}
	if a.b != nil {
		a.h.Document = a.b.Document()
	}
	return a.h
}
