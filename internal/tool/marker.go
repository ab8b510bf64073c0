/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tool

import (
	"github.com/google/uuid"

	"docflow/internal/render"
	"docflow/internal/vector"
)

// MarkerSize is the edge length of a marker's square hit area.
const MarkerSize = 48

// Marker is a start or end point of the document flow. Links may run from the
// start marker to a page and from a page to the end marker.
type Marker struct {
	id   string
	Kind ParticipantKind
	Pos  vector.Pt
}

// NewMarker creates a marker centered at pos. kind must be ParticipantStart or ParticipantEnd.
func NewMarker(kind ParticipantKind, pos vector.Pt) *Marker {
	return &Marker{id: uuid.New().String(), Kind: kind, Pos: pos}
}

// RestoreMarker recreates a marker with a known ID.
func RestoreMarker(id string, kind ParticipantKind, pos vector.Pt) *Marker {
	return &Marker{id: id, Kind: kind, Pos: pos}
}

func (m *Marker) ID() string { return m.id }

func (m *Marker) Bounds() vector.Rect {
	return vector.R(m.Pos.X-MarkerSize/2, m.Pos.Y-MarkerSize/2, MarkerSize, MarkerSize)
}

func (m *Marker) Hit(p vector.Pt) bool { return m.Bounds().Contains(p) }

func (m *Marker) label() string {
	if m.Kind == ParticipantEnd {
		return "End"
	}
	return "Start"
}

func (m *Marker) Draw(s render.Surface, tc *Context) {
	col := render.Black
	if tc != nil && tc.IsSelected(m.id) {
		col = render.Red
	}
	b := m.Bounds()
	s.StrokeRect(b, col, 2)
	render.TextCentered(s, m.label(), b.X, b.W, b.Y+b.H/2+5, 14, col)
}

// MouseReleased lets the marker take part in a link gesture. A start marker
// can only anchor a link; an end marker can only complete one anchored on a page.
func (m *Marker) MouseReleased(tc *Context) {
	if !tc.ArrowMode().Active() {
		return
	}
	parts := tc.ArrowParticipants()
	switch m.Kind {
	case ParticipantStart:
		if len(parts) == 0 {
			tc.BeginArrow(Participant{Kind: ParticipantStart, Ref: m})
		}
	case ParticipantEnd:
		if len(parts) == 1 && parts[0].Kind == ParticipantPage {
			tc.BeginArrow(Participant{Kind: ParticipantEnd, Ref: m})
		}
	}
}
