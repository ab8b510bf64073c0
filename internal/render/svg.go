/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"fmt"
	"math"

	"docflow/internal/vector"
)

// SVG accumulates drawing calls as SVG elements. The viewBox equals the
// document area passed to NewSVG; width/height attributes are in pixels at dpi.
type SVG struct {
	view vector.Rect
	dpi  int
	buf  bytes.Buffer
	err  error
}

func NewSVG(view vector.Rect, dpi int) *SVG {
	if dpi <= 0 {
		dpi = 72
	}
	return &SVG{view: view, dpi: dpi}
}

func (s *SVG) wf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(&s.buf, format, args...)
}

func (s *SVG) StrokeRect(r vector.Rect, c Color, width float64) {
	s.wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\"%s stroke-width=\"%g\"/>\n",
		r.X, r.Y, r.W, r.H, svgColor(c), opacity("stroke-opacity", c), width)
}

func (s *SVG) FillRect(r vector.Rect, c Color) {
	s.wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"%s/>\n",
		r.X, r.Y, r.W, r.H, svgColor(c), opacity("fill-opacity", c))
}

func (s *SVG) Line(a, b vector.Pt, c Color, width float64) {
	s.wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\"%s stroke-width=\"%g\"/>\n",
		a.X, a.Y, b.X, b.Y, svgColor(c), opacity("stroke-opacity", c), width)
}

func (s *SVG) Text(at vector.Pt, size float64, text string, c Color) {
	s.wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\" fill=\"%s\">%s</text>\n",
		at.X, at.Y, size, svgColor(c), escText(text))
}

// Bytes returns the complete SVG document.
func (s *SVG) Bytes() ([]byte, error) {
	if s.err != nil {
		return nil, fmt.Errorf("build svg: %w", s.err)
	}
	scale := float64(s.dpi) / 72.0
	pxW := int(math.Round(s.view.W * scale))
	pxH := int(math.Round(s.view.H * scale))
	var out bytes.Buffer
	fmt.Fprintf(&out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&out, "<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"%g %g %g %g\">\n",
		pxW, pxH, s.view.X, s.view.Y, s.view.W, s.view.H)
	fmt.Fprintf(&out, "  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", s.view.X, s.view.Y, s.view.W, s.view.H)
	out.Write(s.buf.Bytes())
	out.WriteString("</svg>\n")
	return out.Bytes(), nil
}

func svgColor(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(attr string, c Color) string {
	if c.Opaque() {
		return ""
	}
	return fmt.Sprintf(" %s=\"%.3g\"", attr, float64(c.A)/255)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
