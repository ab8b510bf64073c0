/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"docflow/internal/field"
	applog "docflow/internal/log"
	"docflow/internal/page"
	"docflow/internal/storage"
)

// errNotEdited means a release on a field did not change it, for example
// because another page covers the field.
var errNotEdited = errors.New("field was not edited")

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <dir> <page-id> <key> <value>",
		Short: "Set a text field of a page",
		Long: `Edit clicks the field bound to <key> and answers its text prompt with <value>,
exactly as an interactive edit would. The previous page data is kept in the
page history.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			id, err := a.resolvePage(args[1])
			if err != nil {
				return err
			}
			p, _ := a.b.Page(id)
			before, err := page.EncodeData(p.Data())
			if err != nil {
				return err
			}
			if err := a.editField(p, args[2], args[3]); err != nil {
				return err
			}
			return a.commitEdit(cmd.Context(), p, before)
		},
	}
}

// editField releases the pointer on the centre of the field bound to key with
// a prompt that answers value.
func (a *app) editField(p *page.Page, key, value string) error {
	var target field.Field
	keys := make([]string, 0, len(p.Fields()))
	for _, f := range p.Fields() {
		keys = append(keys, f.Key())
		if f.Key() == key {
			target = f
		}
	}
	if target == nil {
		if len(keys) == 0 {
			return fmt.Errorf("%s page has no editable fields", p.Kind())
		}
		return fmt.Errorf("%s page has no field %q (fields: %s)", p.Kind(), key, strings.Join(keys, ", "))
	}
	tc := a.b.Tool()
	tc.SetPrompt(func(field.EditRequest) (string, bool) { return value, true })
	defer tc.SetPrompt(nil)
	pt := p.ToDocument(target.LocalRect().Center())
	a.b.Release(pt.X, pt.Y)
	if p.Data().String(key) != value {
		return fmt.Errorf("%w: %s on %s", errNotEdited, key, p.ID())
	}
	return nil
}

// commitEdit saves the document and records the data before the edit in the
// persisted page history.
func (a *app) commitEdit(ctx context.Context, p *page.Page, before []byte) error {
	after, err := page.EncodeData(p.Data())
	if err != nil {
		return err
	}
	if bytes.Equal(before, after) {
		return nil
	}
	if err := a.save(ctx); err != nil {
		return err
	}
	ctx = applog.WithPage(applog.WithDocument(ctx, a.h.Root), p.ID())
	if err := storage.SaveSnapshot(ctx, a.h, p.ID(), before, a.now()); err != nil {
		a.log.WarnContext(ctx, "history snapshot failed", slog.Any("err", err))
		return nil
	}
	a.log.DebugContext(ctx, "history snapshot saved", slog.Int("bytes", len(before)))
	if n, err := storage.PruneOldSnapshots(ctx, a.h, p.ID(), a.cfg.Editor.SnapshotKeep); err != nil {
		a.log.WarnContext(ctx, "history prune failed", slog.Any("err", err))
	} else if n > 0 {
		a.log.DebugContext(ctx, "history pruned", slog.Int64("removed", n))
	}
	return nil
}

func newRowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "row <dir> <page-id> <cell>...",
		Short: "Append a row to a changelog page",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			id, err := a.resolvePage(args[1])
			if err != nil {
				return err
			}
			p, _ := a.b.Page(id)
			before, err := page.EncodeData(p.Data())
			if err != nil {
				return err
			}
			if err := page.AppendChangelogRow(p, args[2:]...); err != nil {
				return err
			}
			return a.commitEdit(cmd.Context(), p, before)
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <dir> <page-id>",
		Short: "List the saved versions of a page, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			id, err := a.resolvePage(args[1])
			if err != nil {
				return err
			}
			snaps, err := storage.ListSnapshots(cmd.Context(), a.h, id, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(snaps) == 0 {
				fmt.Fprintln(w, "No history for", id)
				return nil
			}
			for i, s := range snaps {
				fmt.Fprintf(w, "%3d  %s  %s\n", i, s.TS.Local().Format("2006-01-02 15:04:05"), describeBlob(s.Blob))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of versions")
	return cmd
}

// describeBlob renders snapshot data as key=value pairs in key order.
func describeBlob(b []byte) string {
	d, err := page.DecodeData(b)
	if err != nil {
		return "<unreadable>"
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := d[k].(type) {
		case [][]string:
			parts = append(parts, fmt.Sprintf("%s=%d rows", k, len(v)))
		case []string:
			parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(v, "|")))
		default:
			parts = append(parts, fmt.Sprintf("%s=%q", k, fmt.Sprint(v)))
		}
	}
	return strings.Join(parts, " ")
}

func newRestoreCmd(a *app) *cobra.Command {
	var at int
	cmd := &cobra.Command{
		Use:   "restore <dir> <page-id>",
		Short: "Restore a page to a saved version",
		Long: `Restore replaces the page data with version --at from "docflow history"
(0 is the newest). The data being replaced becomes the newest version, so a
restore can itself be undone with "restore --at 0".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if at < 0 {
				return fmt.Errorf("--at must not be negative")
			}
			if err := a.open(args[0]); err != nil {
				return err
			}
			id, err := a.resolvePage(args[1])
			if err != nil {
				return err
			}
			snaps, err := storage.ListSnapshots(cmd.Context(), a.h, id, at+1)
			if err != nil {
				return err
			}
			if at >= len(snaps) {
				return fmt.Errorf("page %s has %d saved versions", id, len(snaps))
			}
			data, err := page.DecodeData(snaps[at].Blob)
			if err != nil {
				return err
			}
			p, _ := a.b.Page(id)
			before, err := page.EncodeData(p.Data())
			if err != nil {
				return err
			}
			if err := p.Restore(data); err != nil {
				return err
			}
			if err := a.commitEdit(cmd.Context(), p, before); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", id, snaps[at].TS.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
	cmd.Flags().IntVar(&at, "at", 0, "Version index from history")
	return cmd
}
