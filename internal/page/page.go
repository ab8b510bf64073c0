/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package page implements the page blocks arranged on a board: their geometry,
// frame drawing, mouse dispatch into embedded fields and their part in the
// arrow-link gesture.
package page

import (
	"errors"
	"fmt"

	"docflow/internal/domain"
	"docflow/internal/field"
	"docflow/internal/render"
	"docflow/internal/tool"
	"docflow/internal/vector"
)

// NearMargin is how far outside its frame a page still counts as targeted.
const NearMargin = 70

var (
	// ErrUnboundKey is returned when a field's key is missing from the page
	// data. The wrapped *field.UnboundKeyError names the key.
	ErrUnboundKey = errors.New("page: field bound to missing data key")
	// ErrUnknownKind is returned for a kind outside the variant table.
	ErrUnknownKind = errors.New("page: unknown kind")
)

// ToolContext is the part of the tool state a page reads, plus the one
// mutation it may perform (BeginArrow).
type ToolContext interface {
	field.Context
	IsSelected(id string) bool
	ArrowMode() tool.ArrowMode
	ArrowParticipants() []tool.Participant
	BeginArrow(p tool.Participant)
}

// Page is a fixed-size block on the board. Its fields share the page's data
// map; there is never a second copy of it.
type Page struct {
	id     string
	kind   Kind
	pos    vector.Pt
	size   vector.Size
	fields []field.Field
	data   field.Data
}

func (p *Page) ID() string            { return p.id }
func (p *Page) Kind() Kind            { return p.kind }
func (p *Page) Size() vector.Size     { return p.size }
func (p *Page) Position() vector.Pt   { return p.pos }
func (p *Page) Fields() []field.Field { return append([]field.Field(nil), p.fields...) }
func (p *Page) Label() string         { return variantFor(p.kind).label }

// Data returns the live data map shared with the page's fields.
func (p *Page) Data() field.Data { return p.data }

// Bounds is the page rectangle in document space.
func (p *Page) Bounds() vector.Rect {
	return vector.Rect{X: p.pos.X, Y: p.pos.Y, W: p.size.W, H: p.size.H}
}

// SetPosition moves the page. Overlap and off-board placement are allowed.
func (p *Page) SetPosition(x, y float64) { p.pos = vector.Pt{X: x, Y: y} }

// IsNear reports whether (px, py) lies strictly inside the page bounds grown
// by NearMargin on every side.
func (p *Page) IsNear(px, py float64) bool {
	return p.Bounds().Expand(NearMargin).ContainsStrict(vector.Pt{X: px, Y: py})
}

// transform maps page-local coordinates to document space.
func (p *Page) transform() vector.Affine2D { return vector.Translate(p.pos.X, p.pos.Y) }

// ToLocal converts a document-space point to page-local coordinates.
func (p *Page) ToLocal(pt vector.Pt) vector.Pt { return p.transform().Invert().Apply(pt) }

// ToDocument converts a page-local point to document space.
func (p *Page) ToDocument(pt vector.Pt) vector.Pt { return p.transform().Apply(pt) }

// DrawFields paints every field in order at its absolute position. Later
// fields paint over earlier ones.
func (p *Page) DrawFields(s render.Surface, highlighted bool) {
	for _, f := range p.fields {
		f.Draw(s, p.ToDocument(f.LocalRect().Origin()), highlighted)
	}
}

// DrawFrame draws the outline, the label above the top-left corner and, when
// the pointer is near, a translucent highlight over the page.
func (p *Page) DrawFrame(s render.Surface, tc ToolContext, label string, pointer vector.Pt) {
	b := p.Bounds()
	col := render.Black
	if tc != nil && tc.IsSelected(p.id) {
		col = render.Red
	}
	s.StrokeRect(b, col, 1)
	s.Text(vector.Pt{X: b.X, Y: b.Y - 10}, 40, label, render.Black)
	if p.IsNear(pointer.X, pointer.Y) {
		s.FillRect(b, render.Highlight)
	}
}

// Draw renders the frame with the variant label, the variant decoration and
// then the fields, highlighted while the pointer is near.
func (p *Page) Draw(s render.Surface, tc ToolContext, pointer vector.Pt) {
	v := variantFor(p.kind)
	p.DrawFrame(s, tc, v.label, pointer)
	if v.decorate != nil {
		v.decorate(p, s)
	}
	p.DrawFields(s, p.IsNear(pointer.X, pointer.Y))
}

// MouseReleased dispatches a document-space release. Every field hit by the
// local point receives it; afterwards the page takes part in a running
// arrow-link gesture.
func (p *Page) MouseReleased(tc ToolContext, px, py float64) {
	local := p.ToLocal(vector.Pt{X: px, Y: py})
	for _, f := range p.fields {
		if f.Hit(local) {
			f.MouseReleased(tc, local)
		}
	}
	if tc == nil || !tc.ArrowMode().Active() {
		return
	}
	parts := tc.ArrowParticipants()
	if len(parts) == 0 {
		tc.BeginArrow(tool.PageParticipant(p))
		return
	}
	switch parts[0].Kind {
	case tool.ParticipantStart, tool.ParticipantPage:
		tc.BeginArrow(tool.PageParticipant(p))
	}
	// an end-marker anchor leaves the gesture untouched
}

// Serialize returns the persisted form. Data is passed through verbatim.
func (p *Page) Serialize() domain.PageRecord {
	return domain.PageRecord{
		ID:     p.id,
		Kind:   string(p.kind),
		X:      p.pos.X,
		Y:      p.pos.Y,
		Width:  p.size.W,
		Height: p.size.H,
		Data:   p.data,
	}
}

// Restore replaces the page data in place, keeping field bindings intact.
// Every field key must still be present afterwards.
func (p *Page) Restore(data field.Data) error {
	if err := checkBound(p.fields, data); err != nil {
		return err
	}
	p.data.Replace(data)
	return nil
}

func checkBound(fields []field.Field, data field.Data) error {
	for _, f := range fields {
		if !data.Has(f.Key()) {
			return fmt.Errorf("%w: %w", ErrUnboundKey, &field.UnboundKeyError{Key: f.Key()})
		}
	}
	return nil
}
