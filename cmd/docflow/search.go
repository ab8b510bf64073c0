/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"docflow/internal/storage"
)

func newSearchCmd(a *app) *cobra.Command {
	var q storage.SearchQuery
	cmd := &cobra.Command{
		Use:   "search <dir> [text]",
		Short: "Full-text search over page fields",
		Long: `Search queries the document index. Text uses SQLite FTS5 syntax; without
text the filters alone select entries.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			if len(args) == 2 {
				q.Text = args[1]
			}
			if q.PageID != "" {
				id, err := a.resolvePage(q.PageID)
				if err != nil {
					return err
				}
				q.PageID = id
			}
			if err := a.ensureIndex(cmd); err != nil {
				return err
			}
			res, err := storage.Search(cmd.Context(), a.h.Root, q)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range res {
				fmt.Fprintf(w, "%-11s %s  %s\n", r.Type, r.Path, strings.ReplaceAll(r.Snippet, "\n", " "))
			}
			a.log.Debug("search done", slog.Int("results", len(res)))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&q.Kinds, "kind", nil, "Only these page kinds")
	cmd.Flags().StringSliceVar(&q.Keys, "key", nil, "Only these field keys")
	cmd.Flags().StringVar(&q.PageID, "page", "", "Only this page")
	cmd.Flags().IntVar(&q.Limit, "limit", 50, "Maximum results")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "Skip this many results")
	return cmd
}

// ensureIndex repairs a corrupt index and fills an empty one from the manifest.
func (a *app) ensureIndex(cmd *cobra.Command) error {
	ctx := cmd.Context()
	rebuilt, err := storage.DetectAndRebuildIndex(ctx, a.h.Root, a.h.Document)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if rebuilt {
		a.log.Info("index rebuilt", slog.String("root", a.h.Root))
		return nil
	}
	return storage.BuildIndexIfEmpty(ctx, a.h.Root, a.h.Document)
}
