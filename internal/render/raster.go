/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"docflow/internal/vector"
)

// Raster paints onto an RGBA image. Document points are mapped to pixels by
// xf; text always uses the 7x13 basic face regardless of the requested size.
type Raster struct {
	img *image.RGBA
	xf  vector.Affine2D
}

// NewRaster creates a white image of w x h pixels that shows the document
// area view scaled to fit exactly.
func NewRaster(view vector.Rect, w, h int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(White)}, image.Point{}, draw.Src)
	sx, sy := 1.0, 1.0
	if view.W > 0 {
		sx = float64(w) / view.W
	}
	if view.H > 0 {
		sy = float64(h) / view.H
	}
	xf := vector.Scale(sx, sy).Mul(vector.Translate(-view.X, -view.Y))
	return &Raster{img: img, xf: xf}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) px(p vector.Pt) (int, int) {
	q := r.xf.Apply(p)
	return int(math.Round(q.X)), int(math.Round(q.Y))
}

func (r *Raster) StrokeRect(rc vector.Rect, c Color, width float64) {
	x0, y0 := r.px(rc.Origin())
	x1, y1 := r.px(rc.Max())
	col := toRGBA(c)
	t := thickness(width, r.xf.A)
	for i := 0; i < t; i++ {
		strokeRect(r.img, x0+i, y0+i, x1-i, y1-i, col)
	}
}

func (r *Raster) FillRect(rc vector.Rect, c Color) {
	x0, y0 := r.px(rc.Origin())
	x1, y1 := r.px(rc.Max())
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	op := draw.Over
	if c.Opaque() {
		op = draw.Src
	}
	draw.Draw(r.img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}}, image.Point{}, op)
}

func (r *Raster) Line(a, b vector.Pt, c Color, width float64) {
	x0, y0 := r.px(a)
	x1, y1 := r.px(b)
	col := toRGBA(c)
	t := thickness(width, r.xf.A)
	for i := 0; i < t; i++ {
		bresenham(r.img, x0, y0+i, x1, y1+i, col)
	}
}

func (r *Raster) Text(at vector.Pt, _ float64, s string, c Color) {
	x, y := r.px(at)
	d := &font.Drawer{
		Dst:  r.img,
		Src:  &image.Uniform{C: toRGBA(c)},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func thickness(width, scale float64) int {
	t := int(math.Round(width * scale))
	if t < 1 {
		t = 1
	}
	return t
}

func toRGBA(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func bresenham(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
