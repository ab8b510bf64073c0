/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	if r.ContainsStrict(Pt{10, 20}) || !r.ContainsStrict(Pt{11, 21}) {
		t.Fatalf("strict containment should exclude edges only")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
	out := r.Expand(70)
	if out.X != -60 || out.Y != -50 || out.W != 240 || out.H != 190 {
		t.Fatalf("unexpected expand: %+v", out)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestAffineNestedRoundTrip(t *testing.T) {
	board := Translate(100, 40)
	field := Translate(12, 30)
	toDoc := board.Mul(field)
	in := Pt{5, 7}
	doc := toDoc.Apply(in)
	if doc.X != 117 || doc.Y != 77 {
		t.Fatalf("unexpected composed transform: %+v", doc)
	}
	back := toDoc.Invert().Apply(doc)
	if back != in {
		t.Fatalf("inverse did not round-trip: got %+v want %+v", back, in)
	}
}

func TestUnionAndCenter(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(20, 5, 10, 10))
	if u.X != 0 || u.Y != 0 || u.W != 30 || u.H != 15 {
		t.Fatalf("unexpected union: %+v", u)
	}
	if c := R(0, 0, 10, 20).Center(); c.X != 5 || c.Y != 10 {
		t.Fatalf("unexpected center: %+v", c)
	}
}

func TestMMToPtA4(t *testing.T) {
	if got := FloatRound(MMToPt(297), 3); got != 841.89 {
		t.Fatalf("A4 long edge = %v, want 841.89", got)
	}
}
