/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"docflow/internal/vector"
)

// PDF paints onto a single gofpdf page sized to the document area view.
// Units are points, so document coordinates map 1:1 after the origin shift.
type PDF struct {
	pdf  *gofpdf.Fpdf
	view vector.Rect
}

// NewPDF starts a one-page document covering view.
func NewPDF(view vector.Rect, title string) *PDF {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: view.W, Ht: view.H},
	})
	pdf.SetTitle(title, false)
	pdf.SetAuthor("docflow", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: view.W, Ht: view.H})
	pdf.SetFont("Helvetica", "", 12)
	return &PDF{pdf: pdf, view: view}
}

func (p *PDF) at(pt vector.Pt) (float64, float64) { return pt.X - p.view.X, pt.Y - p.view.Y }

func (p *PDF) StrokeRect(r vector.Rect, c Color, width float64) {
	x, y := p.at(r.Origin())
	p.withAlpha(c, func() {
		p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.pdf.SetLineWidth(width)
		p.pdf.Rect(x, y, r.W, r.H, "D")
	})
}

func (p *PDF) FillRect(r vector.Rect, c Color) {
	x, y := p.at(r.Origin())
	p.withAlpha(c, func() {
		p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		p.pdf.Rect(x, y, r.W, r.H, "F")
	})
}

func (p *PDF) Line(a, b vector.Pt, c Color, width float64) {
	x0, y0 := p.at(a)
	x1, y1 := p.at(b)
	p.withAlpha(c, func() {
		p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.pdf.SetLineWidth(width)
		p.pdf.Line(x0, y0, x1, y1)
	})
}

func (p *PDF) Text(at vector.Pt, size float64, s string, c Color) {
	x, y := p.at(at)
	p.withAlpha(c, func() {
		p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
		p.pdf.SetFont("Helvetica", "", size)
		p.pdf.Text(x, y, s)
	})
}

func (p *PDF) withAlpha(c Color, fn func()) {
	if c.Opaque() {
		fn()
		return
	}
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
	fn()
	p.pdf.SetAlpha(1, "Normal")
}

// Output finishes the document and writes it to w.
func (p *PDF) Output(w io.Writer) error {
	if err := p.pdf.Output(w); err != nil {
		return err
	}
	return p.pdf.Error()
}

// Err returns the first error recorded by the PDF generator.
func (p *PDF) Err() error { return p.pdf.Error() }
