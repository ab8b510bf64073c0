/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package page

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docflow/internal/field"
	"docflow/internal/render"
	"docflow/internal/vector"
)

// Kind tags a page variant.
type Kind string

const (
	KindTitle       Kind = "title"
	KindChangelog   Kind = "changelog"
	KindDescription Kind = "description"
	KindEmpty       Kind = "empty"
)

// Kinds lists every page kind in a stable order.
func Kinds() []Kind { return []Kind{KindTitle, KindChangelog, KindDescription, KindEmpty} }

// ParseKind maps a user-supplied name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := variants[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// A4 is the default page size: A4 landscape in points (1pt = 1/72 inch).
var A4 = vector.Size{W: vector.MMToPt(297), H: vector.MMToPt(210)}

// Text sizes used by the page layouts.
const (
	SizeTitle  = 64
	SizeHeader = 32
	SizeText   = 12
)

const (
	changelogTextSize = SizeText * 1.5
	changelogRowStep  = SizeText * 2
)

// variant is the static description of a page kind: its label, the data it is
// seeded with, where its fields go for a given page size and what it paints
// between the frame and the fields.
type variant struct {
	label    string
	defaults func() field.Data
	layout   func(size vector.Size, data field.Data) []field.Field
	decorate func(p *Page, s render.Surface)
}

var variants = map[Kind]variant{
	KindTitle: {
		label: "Title page",
		defaults: func() field.Data {
			return field.Data{"title": "", "subtitle": ""}
		},
		layout: func(sz vector.Size, d field.Data) []field.Field {
			return []field.Field{
				field.NewTextField("Title:", vector.R(0, sz.H/2-32, sz.W, 64), "title", d),
				field.NewTextField("Subtitle:", vector.R(0, sz.H/2+40, sz.W, 38), "subtitle", d),
			}
		},
	},
	KindChangelog: {
		label: "Changelog page",
		defaults: func() field.Data {
			return field.Data{
				"titlerow": []string{"Version", "Description"},
				"rows":     [][]string{{"0.1", "Foo"}},
			}
		},
		decorate: drawChangelog,
	},
	KindDescription: {
		label: "Description page",
		defaults: func() field.Data {
			return field.Data{"title": "Project goals", "text": "some text"}
		},
		layout: func(sz vector.Size, d field.Data) []field.Field {
			return []field.Field{
				field.NewTextField("Title:", vector.R(0, SizeHeader, sz.W, SizeHeader), "title", d),
				field.NewTextArea("Text:", vector.R(sz.W/20, 3*SizeHeader, sz.W*18/20, sz.H-3*SizeHeader), SizeText, "text", d),
			}
		},
	},
	KindEmpty: {
		label:    "Page",
		defaults: func() field.Data { return field.Data{} },
	},
}

func variantFor(k Kind) variant {
	if v, ok := variants[k]; ok {
		return v
	}
	return variants[KindEmpty]
}

type options struct {
	id   string
	size vector.Size
	pos  vector.Pt
}

// Option customizes New.
type Option func(*options)

// WithID keeps a known page ID instead of generating one.
func WithID(id string) Option { return func(o *options) { o.id = id } }

// WithSize overrides the default A4 size.
func WithSize(w, h float64) Option {
	return func(o *options) { o.size = vector.Size{W: w, H: h} }
}

// WithPosition places the page at (x, y).
func WithPosition(x, y float64) Option {
	return func(o *options) { o.pos = vector.Pt{X: x, Y: y} }
}

// New builds a page of the given kind with its default data and field layout.
func New(kind Kind, opts ...Option) (*Page, error) {
	v, ok := variants[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	o := options{size: A4}
	for _, fn := range opts {
		fn(&o)
	}
	if o.id == "" {
		o.id = uuid.New().String()
	}
	if o.size.W <= 0 || o.size.H <= 0 {
		return nil, fmt.Errorf("page: invalid size %gx%g", o.size.W, o.size.H)
	}
	data := v.defaults()
	var fields []field.Field
	if v.layout != nil {
		fields = v.layout(o.size, data)
	}
	if err := checkBound(fields, data); err != nil {
		return nil, err
	}
	return &Page{id: o.id, kind: kind, pos: o.pos, size: o.size, fields: fields, data: data}, nil
}

// MustNew is New for static kinds known to be valid; it panics on error.
func MustNew(kind Kind, opts ...Option) *Page {
	p, err := New(kind, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// AppendChangelogRow adds an entry to a changelog page.
func AppendChangelogRow(p *Page, cells ...string) error {
	if p.kind != KindChangelog {
		return fmt.Errorf("page %s is a %s page, not a changelog", p.id, p.kind)
	}
	p.data["rows"] = append(p.data.Table("rows"), append([]string(nil), cells...))
	return nil
}

func drawChangelog(p *Page, s render.Surface) {
	b := p.Bounds()
	render.TextCentered(s, "Changelog", b.X, b.W, b.Y+2*SizeHeader, SizeHeader, render.Black)

	header := p.data.Strings("titlerow")
	rows := p.data.Table("rows")
	cols := len(header)
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return
	}
	left, width := b.X+b.W/20, b.W*18/20
	colW := width / float64(cols)
	y := b.Y + 3*SizeHeader + SizeHeader/2
	for i, h := range header {
		s.Text(vector.Pt{X: left + float64(i)*colW, Y: y}, changelogTextSize, h, render.Black)
	}
	s.Line(vector.Pt{X: left, Y: y + 6}, vector.Pt{X: left + width, Y: y + 6}, render.Black, 1)
	for _, r := range rows {
		y += changelogRowStep
		if y > b.Y+b.H {
			break
		}
		for i, c := range r {
			s.Text(vector.Pt{X: left + float64(i)*colW, Y: y}, changelogTextSize, c, render.Black)
		}
	}
}
