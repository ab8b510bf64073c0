/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render defines the drawing surface the page model paints on and the
// backends that implement it (in-memory recorder, raster image, PDF, SVG).
// Coordinates handed to a Surface are document-space points; a backend maps
// them to its own output space.
package render

import (
	"unicode/utf8"

	"docflow/internal/vector"
)

// Color is an 8-bit RGBA color. A is 255 for opaque.
type Color struct{ R, G, B, A uint8 }

var (
	Black     = Color{0, 0, 0, 255}
	Red       = Color{255, 0, 0, 255}
	White     = Color{255, 255, 255, 255}
	Gray      = Color{160, 160, 160, 255}
	LinkBlue  = Color{40, 90, 200, 255}
	Highlight = Color{204, 230, 255, 51} // light blue at 20% opacity
)

// Opaque reports whether c has full alpha.
func (c Color) Opaque() bool { return c.A == 255 }

// Surface is the set of primitives the page model needs.
type Surface interface {
	StrokeRect(r vector.Rect, c Color, width float64)
	FillRect(r vector.Rect, c Color)
	Line(a, b vector.Pt, c Color, width float64)
	// Text draws s with its baseline starting at at.
	Text(at vector.Pt, size float64, s string, c Color)
}

// TextWidth approximates the advance of s at the given size using the
// fixed 7x13 cell of the basic font. Backends do not measure real glyphs.
func TextWidth(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * 7 / 13
}

// TextCentered draws s horizontally centered in the span [x, x+w] at baseline y.
func TextCentered(s Surface, text string, x, w, y, size float64, c Color) {
	tw := TextWidth(text, size)
	s.Text(vector.Pt{X: x + (w-tw)/2, Y: y}, size, text, c)
}
