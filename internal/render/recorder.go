/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import "docflow/internal/vector"

// OpKind names a recorded drawing primitive.
type OpKind string

const (
	OpStrokeRect OpKind = "stroke_rect"
	OpFillRect   OpKind = "fill_rect"
	OpLine       OpKind = "line"
	OpText       OpKind = "text"
)

// Op is one recorded drawing call.
type Op struct {
	Kind  OpKind
	Rect  vector.Rect
	From  vector.Pt
	To    vector.Pt
	Color Color
	Width float64
	Size  float64
	Text  string
}

// Recorder is a Surface that keeps every call in order. It is used by tests
// and by hit-preview tooling that needs to inspect what a page would paint.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) StrokeRect(rc vector.Rect, c Color, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeRect, Rect: rc, Color: c, Width: width})
}

func (r *Recorder) FillRect(rc vector.Rect, c Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillRect, Rect: rc, Color: c})
}

func (r *Recorder) Line(a, b vector.Pt, c Color, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, From: a, To: b, Color: c, Width: width})
}

func (r *Recorder) Text(at vector.Pt, size float64, s string, c Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, From: at, Size: size, Text: s, Color: c})
}

// Count returns how many ops of kind k were recorded.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Texts returns the strings of all recorded text ops in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset drops all recorded ops.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
