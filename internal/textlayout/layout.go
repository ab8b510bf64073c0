/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Line breaking for multi-line fields. Measurement goes through x/image font
// faces so the result is deterministic; the basic 7x13 face is scaled to the
// requested point size.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string
	SizePt float64
}

// Metrics provides font metrics in document units for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Line is a single laid out line.
type Line struct {
	Text  string
	Width float64
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines      []Line
	Width      float64
	Height     float64
	LineHeight float64
	Metrics    Metrics
}

// Provider maps FontSpec to a concrete font.Face plus the factor that scales
// the face's pixel advances to the requested size.
type Provider interface {
	Resolve(FontSpec) (face font.Face, scale float64, m Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for every request.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, float64, Metrics) {
	f := basicfont.Face7x13
	scale := 1.0
	if spec.SizePt > 0 {
		scale = spec.SizePt / 13
	}
	m := f.Metrics()
	asc := float64(m.Ascent.Round()) * scale
	desc := float64(m.Descent.Round()) * scale
	return f, scale, Metrics{
		Ascent:  asc,
		Descent: desc,
		LineGap: float64(m.Height.Round())*scale - asc - desc,
	}
}

// WordWrapLayouter breaks on spaces and explicit newlines; it does not
// perform shaping or hyphenation.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

// Layout wraps text so that no line exceeds maxWidth unless a single word is
// wider than the box. maxWidth <= 0 disables wrapping.
func (l *WordWrapLayouter) Layout(text string, spec FontSpec, maxWidth float64) TextBox {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	face, scale, met := l.Provider.Resolve(spec)
	drawer := &font.Drawer{Face: face}
	box := TextBox{Metrics: met, LineHeight: met.Ascent + met.Descent + met.LineGap}
	spaceW := advance(drawer, " ") * scale

	var cur []string
	var curW float64
	flush := func() {
		ln := Line{Text: strings.Join(cur, " "), Width: curW}
		box.Lines = append(box.Lines, ln)
		if ln.Width > box.Width {
			box.Width = ln.Width
		}
		box.Height += box.LineHeight
		cur, curW = nil, 0
	}
	for _, para := range strings.Split(text, "\n") {
		for _, word := range strings.Fields(para) {
			w := advance(drawer, word) * scale
			next := curW + w
			if len(cur) > 0 {
				next += spaceW
			}
			if len(cur) > 0 && maxWidth > 0 && next > maxWidth {
				flush()
				next = w
			}
			cur = append(cur, word)
			curW = next
		}
		flush()
	}
	return box
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// Measure returns the single-line width and line height of text at spec.
func Measure(provider Provider, text string, spec FontSpec) (w, h float64) {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, scale, met := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	return advance(d, text) * scale, met.Ascent + met.Descent
}
