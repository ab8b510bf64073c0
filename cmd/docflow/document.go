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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docflow/internal/board"
	"docflow/internal/page"
	"docflow/internal/storage"
	"docflow/internal/tool"
)

func newInitCmd(a *app) *cobra.Command {
	var blank bool
	cmd := &cobra.Command{
		Use:   "init <dir> [name]",
		Short: "Create a new document at <dir>",
		Long: `Init creates the document directory with its manifest, backups and exports
folders. The starter board holds a title page, a changelog and a description
between a start and an end marker; --blank starts with an empty board.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			name := filepath.Base(abs)
			if len(args) == 2 {
				name = args[1]
			}
			b := board.NewDocument(name, a.boardOptions())
			if blank {
				b = board.New(name, a.boardOptions())
			}
			a.log.Info("init document", slog.String("root", abs), slog.String("name", name))
			h, err := storage.Init(abs, b.Document())
			if err != nil {
				return err
			}
			a.h, a.b = h, b
			if err := storage.UpdateIndex(cmd.Context(), abs, h.Document); err != nil {
				a.log.Warn("initial index build failed", slog.Any("err", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created document at", abs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&blank, "blank", false, "Start without pages or markers")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "add <dir> <kind>",
		Short: "Add a page (title, changelog, description, empty)",
		Long: `Add places a new page with default content. Without --x/--y the page goes
to the right of the rightmost page.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := page.ParseKind(args[1])
			if err != nil {
				return err
			}
			if err := a.open(args[0]); err != nil {
				return err
			}
			if !cmd.Flags().Changed("x") && !cmd.Flags().Changed("y") {
				x, y = nextSlot(a.b)
			}
			p, err := page.New(kind, page.WithPosition(x, y))
			if err != nil {
				return err
			}
			if err := a.b.AddPage(p); err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s at %g,%g\n", kind, p.ID(), x, y)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "Left edge in document units")
	cmd.Flags().Float64Var(&y, "y", 0, "Top edge in document units")
	return cmd
}

// nextSlot is right of the rightmost page, with enough room that the near
// margins of neighbours do not overlap.
func nextSlot(b *board.Board) (float64, float64) {
	pages := b.Pages()
	if len(pages) == 0 {
		return 0, 0
	}
	right, top := 0.0, pages[0].Position().Y
	for i, p := range pages {
		r := p.Bounds()
		if i == 0 || r.X+r.W > right {
			right, top = r.X+r.W, r.Y
		}
	}
	return right + 2*page.NearMargin + 60, top
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <dir> <page-id>",
		Short: "Remove a page and its links",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			id, err := a.resolvePage(args[1])
			if err != nil {
				return err
			}
			a.b.RemovePage(id)
			if err := a.save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed", id)
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <dir> <page-id> <x> <y>",
		Short: "Move a page",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var x, y float64
			if _, err := fmt.Sscanf(args[2]+" "+args[3], "%g %g", &x, &y); err != nil {
				return fmt.Errorf("invalid position %s,%s: %w", args[2], args[3], err)
			}
			if err := a.open(args[0]); err != nil {
				return err
			}
			id, err := a.resolvePage(args[1])
			if err != nil {
				return err
			}
			p, _ := a.b.Page(id)
			p.SetPosition(x, y)
			return a.save(cmd.Context())
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <dir>",
		Short: "Print the pages, markers and links of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Document: %s\n", a.b.Name)
			fmt.Fprintf(w, "Pages: %d\n", len(a.b.Pages()))
			for i, p := range a.b.Pages() {
				pos := p.Position()
				fmt.Fprintf(w, "  %d. %s  %-11s %8.1f,%-8.1f %s\n", i+1, p.ID(), p.Kind(), pos.X, pos.Y, summary(p))
			}
			if ms := a.b.Markers(); len(ms) > 0 {
				fmt.Fprintln(w, "Markers:")
				for _, m := range ms {
					fmt.Fprintf(w, "  %s  %-5s %8.1f,%-8.1f\n", m.ID(), m.Kind, m.Pos.X, m.Pos.Y)
				}
			}
			if ls := a.b.Links(); len(ls) > 0 {
				fmt.Fprintln(w, "Links:")
				for _, l := range ls {
					fmt.Fprintf(w, "  %s %s -> %s %s\n", l.From.Kind, l.From.ID(), l.To.Kind, l.To.ID())
				}
			}
			return nil
		},
	}
}

// summary is the first non-empty text of a page, shortened.
func summary(p *page.Page) string {
	d := p.Data()
	for _, k := range []string{"title", "subtitle", "text"} {
		if s := strings.TrimSpace(d.String(k)); s != "" {
			if len(s) > 40 {
				s = s[:37] + "..."
			}
			return fmt.Sprintf("%q", s)
		}
	}
	if rows := d.Table("rows"); len(rows) > 0 {
		return fmt.Sprintf("%d rows", len(rows))
	}
	return ""
}

// resolve maps a component reference to its ID. A reference is a full ID, a
// unique ID prefix, or "start"/"end" for the only marker of that kind.
func (a *app) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}
	if k, ok := tool.ParseParticipantKind(ref); ok && k != tool.ParticipantPage {
		var found []string
		for _, m := range a.b.Markers() {
			if m.Kind == k {
				found = append(found, m.ID())
			}
		}
		return one(ref, found)
	}
	var found []string
	for _, p := range a.b.Pages() {
		if p.ID() == ref {
			return ref, nil
		}
		if strings.HasPrefix(p.ID(), ref) {
			found = append(found, p.ID())
		}
	}
	for _, m := range a.b.Markers() {
		if m.ID() == ref {
			return ref, nil
		}
		if strings.HasPrefix(m.ID(), ref) {
			found = append(found, m.ID())
		}
	}
	return one(ref, found)
}

func (a *app) resolvePage(ref string) (string, error) {
	id, err := a.resolve(ref)
	if err != nil {
		return "", err
	}
	if _, ok := a.b.Page(id); !ok {
		return "", fmt.Errorf("%s is not a page", ref)
	}
	return id, nil
}

func one(ref string, ids []string) (string, error) {
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no component matches %q", ref)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", ref, len(ids))
	}
}
