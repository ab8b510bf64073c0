/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"fmt"
	"log/slog"

	"docflow/internal/domain"
	"docflow/internal/page"
	"docflow/internal/tool"
	"docflow/internal/vector"
)

// Document returns the persisted form of the board. Page data is copied so
// later edits do not leak into the returned value.
func (b *Board) Document() domain.Document {
	doc := domain.Document{Name: b.Name, Metadata: b.Metadata, Pages: make([]domain.PageRecord, 0, len(b.pages))}
	for _, p := range b.pages {
		rec := p.Serialize()
		rec.Data = p.Data().Clone()
		doc.Pages = append(doc.Pages, rec)
	}
	for _, m := range b.markers {
		doc.Markers = append(doc.Markers, domain.MarkerRecord{ID: m.ID(), Kind: m.Kind.String(), X: m.Pos.X, Y: m.Pos.Y})
	}
	for _, l := range b.links {
		doc.Links = append(doc.Links, domain.Link{
			From: domain.Endpoint{ID: l.From.ID(), Kind: l.From.Kind.String()},
			To:   domain.Endpoint{ID: l.To.ID(), Kind: l.To.Kind.String()},
		})
	}
	return doc
}

// FromDocument rebuilds a board. Links whose endpoints no longer exist are
// dropped with a warning.
func FromDocument(doc domain.Document, opts Options) (*Board, error) {
	b := New(doc.Name, opts)
	b.Metadata = doc.Metadata
	for _, rec := range doc.Pages {
		p, err := page.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		if err := b.AddPage(p); err != nil {
			return nil, err
		}
	}
	for _, mr := range doc.Markers {
		kind, ok := tool.ParseParticipantKind(mr.Kind)
		if !ok || kind == tool.ParticipantPage {
			return nil, fmt.Errorf("marker %s: invalid kind %q", mr.ID, mr.Kind)
		}
		b.AddMarker(tool.RestoreMarker(mr.ID, kind, vector.Pt{X: mr.X, Y: mr.Y}))
	}
	for _, l := range doc.Links {
		from, okf := b.participant(l.From.ID)
		to, okt := b.participant(l.To.ID)
		if !okf || !okt {
			b.log.Warn("dropping dangling link", slog.String("from", l.From.ID), slog.String("to", l.To.ID))
			continue
		}
		b.addLink(tool.Link{From: from, To: to})
	}
	return b, nil
}

// NewDocument returns the starter board: a title page, a changelog and a
// description laid out left to right between a start and an end marker.
func NewDocument(name string, opts Options) *Board {
	b := New(name, opts)
	x := 0.0
	for _, k := range []page.Kind{page.KindTitle, page.KindChangelog, page.KindDescription} {
		p := page.MustNew(k, page.WithPosition(x, 0))
		_ = b.AddPage(p)
		x += p.Size().W + 2*page.NearMargin + 60
	}
	mid := page.A4.H / 2
	b.AddMarker(tool.NewMarker(tool.ParticipantStart, vector.Pt{X: -200, Y: mid}))
	b.AddMarker(tool.NewMarker(tool.ParticipantEnd, vector.Pt{X: x + 60, Y: mid}))
	return b
}
