/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package board is the editor surface: it owns the pages, the flow markers and
// the committed links, routes pointer releases to the component under the
// pointer and keeps per-page undo history.
package board

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"docflow/internal/domain"
	applog "docflow/internal/log"
	"docflow/internal/page"
	"docflow/internal/render"
	"docflow/internal/tool"
	"docflow/internal/undo"
	"docflow/internal/vector"
)

// Options configure a Board.
type Options struct {
	Tool tool.Options
	Undo undo.Config
}

// Board is not safe for concurrent use; it is driven by one event loop.
type Board struct {
	Name     string
	Metadata domain.Metadata

	pages   []*page.Page
	markers []*tool.Marker
	links   []tool.Link
	tc      *tool.Context
	undo    *undo.Manager
	log     *slog.Logger
	now     func() time.Time
}

// New returns an empty board.
func New(name string, opts Options) *Board {
	b := &Board{
		Name: name,
		undo: undo.NewManager(opts.Undo),
		log:  applog.WithComponent("board"),
		now:  time.Now,
	}
	onLink := opts.Tool.OnLink
	opts.Tool.OnLink = func(l tool.Link) {
		b.addLink(l)
		if onLink != nil {
			onLink(l)
		}
	}
	b.tc = tool.NewContext(opts.Tool)
	return b
}

// Tool returns the board's tool context.
func (b *Board) Tool() *tool.Context { return b.tc }

// AddPage appends p on top of the draw order.
func (b *Board) AddPage(p *page.Page) error {
	if _, ok := b.Page(p.ID()); ok {
		return fmt.Errorf("page %s already on board", p.ID())
	}
	b.pages = append(b.pages, p)
	b.log.Debug("page added", slog.String("page", p.ID()), slog.String("kind", string(p.Kind())))
	return nil
}

// RemovePage drops a page together with its links, selection and history.
func (b *Board) RemovePage(id string) bool {
	idx := -1
	for i, p := range b.pages {
		if p.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	b.pages = append(b.pages[:idx], b.pages[idx+1:]...)
	kept := b.links[:0]
	for _, l := range b.links {
		if l.From.ID() != id && l.To.ID() != id {
			kept = append(kept, l)
		}
	}
	b.links = kept
	for _, p := range b.tc.ArrowParticipants() {
		if p.ID() == id {
			b.tc.Abort()
			break
		}
	}
	b.tc.Deselect(id)
	b.undo.ClearPage(id)
	b.log.Debug("page removed", slog.String("page", id))
	return true
}

func (b *Board) Page(id string) (*page.Page, bool) {
	for _, p := range b.pages {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Pages returns the pages in draw order.
func (b *Board) Pages() []*page.Page { return append([]*page.Page(nil), b.pages...) }

func (b *Board) AddMarker(m *tool.Marker)    { b.markers = append(b.markers, m) }
func (b *Board) Markers() []*tool.Marker     { return append([]*tool.Marker(nil), b.markers...) }
func (b *Board) Links() []tool.Link          { return append([]tool.Link(nil), b.links...) }
func (b *Board) Undoable(pageID string) bool { return b.undo.CanUndo(pageID) }

// Link commits a link between two components directly, bypassing the gesture.
func (b *Board) Link(fromID, toID string) error {
	from, ok := b.participant(fromID)
	if !ok {
		return fmt.Errorf("unknown component %s", fromID)
	}
	to, ok := b.participant(toID)
	if !ok {
		return fmt.Errorf("unknown component %s", toID)
	}
	if from.ID() == to.ID() {
		return fmt.Errorf("cannot link %s to itself", fromID)
	}
	if from.Kind == tool.ParticipantEnd || to.Kind == tool.ParticipantStart {
		return fmt.Errorf("links run from start to end, not %s to %s", from.Kind, to.Kind)
	}
	b.addLink(tool.Link{From: from, To: to})
	return nil
}

func (b *Board) addLink(l tool.Link) {
	for _, have := range b.links {
		if have.From.ID() == l.From.ID() && have.To.ID() == l.To.ID() {
			return
		}
	}
	b.links = append(b.links, l)
}

func (b *Board) participant(id string) (tool.Participant, bool) {
	if p, ok := b.Page(id); ok {
		return tool.PageParticipant(p), true
	}
	for _, m := range b.markers {
		if m.ID() == id {
			return tool.Participant{Kind: m.Kind, Ref: m}, true
		}
	}
	return tool.Participant{}, false
}

// PageAt returns the topmost page containing pt. While the arrow tool is
// active a page also counts when pt is merely near it.
func (b *Board) PageAt(pt vector.Pt) (*page.Page, bool) {
	for i := len(b.pages) - 1; i >= 0; i-- {
		if b.pages[i].Bounds().Contains(pt) {
			return b.pages[i], true
		}
	}
	if !b.tc.ArrowMode().Active() {
		return nil, false
	}
	for i := len(b.pages) - 1; i >= 0; i-- {
		if b.pages[i].IsNear(pt.X, pt.Y) {
			return b.pages[i], true
		}
	}
	return nil, false
}

// Release routes a pointer release in document space. Markers are checked
// first, then pages from the top of the draw order. An edit that changes page
// data is recorded for undo.
func (b *Board) Release(x, y float64) {
	now := b.now()
	if b.tc.Expire(now) {
		b.log.Info("stale link gesture cleared")
	}
	pt := vector.Pt{X: x, Y: y}
	for i := len(b.markers) - 1; i >= 0; i-- {
		if b.markers[i].Hit(pt) {
			b.markers[i].MouseReleased(b.tc)
			return
		}
	}
	p, ok := b.PageAt(pt)
	if !ok {
		return
	}
	ctx := applog.WithPage(context.Background(), p.ID())
	before, err := page.EncodeData(p.Data())
	if err != nil {
		b.log.WarnContext(ctx, "snapshot failed", slog.Any("err", err))
	}
	p.MouseReleased(b.tc, x, y)
	if before == nil {
		return
	}
	after, err := page.EncodeData(p.Data())
	if err != nil || bytes.Equal(before, after) {
		return
	}
	b.undo.PushSnapshot(undo.Snapshot{PageID: p.ID(), Blob: before, TS: now})
	b.log.DebugContext(ctx, "page edited", slog.Int("bytes", len(before)))
}

// Undo reverts the last recorded edit of a page.
func (b *Board) Undo(pageID string) (bool, error) {
	return b.step(pageID, b.undo.Undo)
}

// Redo re-applies an edit reverted by Undo.
func (b *Board) Redo(pageID string) (bool, error) {
	return b.step(pageID, b.undo.Redo)
}

func (b *Board) step(pageID string, pop func(string, undo.Snapshot) (undo.Snapshot, bool)) (bool, error) {
	p, ok := b.Page(pageID)
	if !ok {
		return false, fmt.Errorf("unknown page %s", pageID)
	}
	cur, err := page.EncodeData(p.Data())
	if err != nil {
		return false, err
	}
	s, ok := pop(pageID, undo.Snapshot{Blob: cur, TS: b.now()})
	if !ok {
		return false, nil
	}
	data, err := page.DecodeData(s.Blob)
	if err != nil {
		return false, err
	}
	if err := p.Restore(data); err != nil {
		return false, err
	}
	return true, nil
}

// Bounds is the union of every page and marker rectangle.
func (b *Board) Bounds() vector.Rect {
	var r vector.Rect
	first := true
	add := func(o vector.Rect) {
		if first {
			r, first = o, false
			return
		}
		r = r.Union(o)
	}
	for _, p := range b.pages {
		add(p.Bounds())
	}
	for _, m := range b.markers {
		add(m.Bounds())
	}
	return r
}

// Draw paints pages in order, then markers, then links as arrows.
func (b *Board) Draw(s render.Surface, pointer vector.Pt) {
	b.DrawWith(s, pointer, true)
}

// DrawWith is Draw with link drawing optional.
func (b *Board) DrawWith(s render.Surface, pointer vector.Pt, links bool) {
	for _, p := range b.pages {
		p.Draw(s, b.tc, pointer)
	}
	for _, m := range b.markers {
		m.Draw(s, b.tc)
	}
	if !links {
		return
	}
	for _, l := range b.links {
		from, okf := b.boundsOf(l.From)
		to, okt := b.boundsOf(l.To)
		if okf && okt {
			drawArrow(s, from, to)
		}
	}
}

func (b *Board) boundsOf(p tool.Participant) (vector.Rect, bool) {
	switch ref := p.Ref.(type) {
	case *page.Page:
		return ref.Bounds(), true
	case *tool.Marker:
		return ref.Bounds(), true
	}
	return vector.Rect{}, false
}

const arrowHead = 14

// drawArrow draws a line between the rectangle borders along the line joining
// their centers, with a head at the target.
func drawArrow(s render.Surface, from, to vector.Rect) {
	a := exitPoint(from, to.Center())
	z := exitPoint(to, from.Center())
	s.Line(a, z, render.LinkBlue, 2)
	ang := math.Atan2(z.Y-a.Y, z.X-a.X)
	for _, d := range []float64{-math.Pi / 7, math.Pi / 7} {
		tip := vector.Pt{X: z.X - arrowHead*math.Cos(ang+d), Y: z.Y - arrowHead*math.Sin(ang+d)}
		s.Line(z, tip, render.LinkBlue, 2)
	}
}

// exitPoint is where the ray from r's center towards target leaves r.
func exitPoint(r vector.Rect, target vector.Pt) vector.Pt {
	c := r.Center()
	dx, dy := target.X-c.X, target.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}
	s := math.Inf(1)
	if dx != 0 {
		s = math.Min(s, r.W/2/math.Abs(dx))
	}
	if dy != 0 {
		s = math.Min(s, r.H/2/math.Abs(dy))
	}
	if s > 1 {
		s = 1
	}
	return vector.Pt{X: c.X + dx*s, Y: c.Y + dy*s}
}
