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
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"docflow/internal/board"
	"docflow/internal/domain"
	"docflow/internal/storage"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Reindex and report whenever the manifest changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", a.h.Root)
			return storage.Watch(ctx, a.h.Root, func(doc domain.Document) {
				a.reload(ctx, doc)
				fmt.Fprintf(w, "Reloaded %s: %d pages, %d links\n", doc.Name, len(doc.Pages), len(doc.Links))
			})
		},
	}
}

// reload swaps in a manifest changed by someone else. A manifest the board
// cannot load keeps the previous board.
func (a *app) reload(ctx context.Context, doc domain.Document) {
	b, err := board.FromDocument(doc, a.boardOptions())
	if err != nil {
		a.log.Warn("reloaded manifest rejected", slog.Any("err", err))
		return
	}
	a.b = b
	a.h.Document = doc
	if err := storage.UpdateIndex(ctx, a.h.Root, doc); err != nil {
		a.log.Warn("index update failed", slog.Any("err", err))
	}
}
