/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package field

import (
	"docflow/internal/render"
	"docflow/internal/textlayout"
	"docflow/internal/vector"
)

// TextField is a single-line editable text bound to a string value.
type TextField struct {
	Label string
	rect  vector.Rect
	key   string
	data  Data
}

// NewTextField binds a single-line field at the page-local rect r to data[key].
func NewTextField(label string, r vector.Rect, key string, data Data) *TextField {
	return &TextField{Label: label, rect: r, key: key, data: data}
}

func (f *TextField) Key() string              { return f.key }
func (f *TextField) LocalRect() vector.Rect   { return f.rect }
func (f *TextField) Hit(local vector.Pt) bool { return f.rect.Contains(local) }
func (f *TextField) Value() string            { return f.data.String(f.key) }

func (f *TextField) fontSize() float64 { return f.rect.H * 0.75 }

func (f *TextField) baseline(at vector.Pt) vector.Pt {
	return vector.Pt{X: at.X, Y: at.Y + f.rect.H*0.8}
}

func (f *TextField) Draw(s render.Surface, at vector.Pt, highlighted bool) {
	if highlighted {
		s.StrokeRect(vector.Rect{X: at.X, Y: at.Y, W: f.rect.W, H: f.rect.H}, render.Gray, 1)
	}
	v := f.Value()
	if v == "" {
		if highlighted {
			s.Text(f.baseline(at), f.fontSize(), f.Label, render.Gray)
		}
		return
	}
	s.Text(f.baseline(at), f.fontSize(), v, render.Black)
}

func (f *TextField) MouseReleased(ctx Context, local vector.Pt) {
	if ctx == nil || !f.Hit(local) {
		return
	}
	v, ok := ctx.EditText(EditRequest{Key: f.key, Label: f.Label, Current: f.Value()})
	if ok {
		f.data[f.key] = v
	}
}

// TextArea is a multi-line editable text, word-wrapped to its width.
type TextArea struct {
	Label    string
	rect     vector.Rect
	textSize float64
	key      string
	data     Data
	layout   *textlayout.WordWrapLayouter
}

func NewTextArea(label string, r vector.Rect, textSize float64, key string, data Data) *TextArea {
	return &TextArea{Label: label, rect: r, textSize: textSize, key: key, data: data,
		layout: textlayout.NewWordWrap(textlayout.BasicProvider{})}
}

func (a *TextArea) Key() string              { return a.key }
func (a *TextArea) LocalRect() vector.Rect   { return a.rect }
func (a *TextArea) Hit(local vector.Pt) bool { return a.rect.Contains(local) }
func (a *TextArea) Value() string            { return a.data.String(a.key) }
func (a *TextArea) TextSize() float64        { return a.textSize }

// Lines returns the wrapped lines that fit the area height.
func (a *TextArea) Lines() []string {
	box := a.layout.Layout(a.Value(), textlayout.FontSpec{SizePt: a.textSize}, a.rect.W)
	lh := a.lineHeight()
	var out []string
	for i, ln := range box.Lines {
		if float64(i+1)*lh > a.rect.H {
			break
		}
		out = append(out, ln.Text)
	}
	return out
}

func (a *TextArea) lineHeight() float64 { return a.textSize * 1.2 }

func (a *TextArea) Draw(s render.Surface, at vector.Pt, highlighted bool) {
	if highlighted {
		s.StrokeRect(vector.Rect{X: at.X, Y: at.Y, W: a.rect.W, H: a.rect.H}, render.Gray, 1)
	}
	lh := a.lineHeight()
	for i, ln := range a.Lines() {
		if ln == "" {
			continue
		}
		s.Text(vector.Pt{X: at.X, Y: at.Y + float64(i+1)*lh}, a.textSize, ln, render.Black)
	}
}

func (a *TextArea) MouseReleased(ctx Context, local vector.Pt) {
	if ctx == nil || !a.Hit(local) {
		return
	}
	v, ok := ctx.EditText(EditRequest{Key: a.key, Label: a.Label, Current: a.Value(), Multiline: true})
	if ok {
		a.data[a.key] = v
	}
}
