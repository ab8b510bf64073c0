/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package field implements the interactive regions a page embeds: single-line
// text fields and multi-line text areas bound to one key of the page's data map.
package field

import (
	"fmt"

	"docflow/internal/render"
	"docflow/internal/vector"
)

// Data is a page's key/value store. Fields hold the owning page's map itself,
// so a write through a field is immediately visible to the page and to
// persistence. Values are string, []string or [][]string.
type Data map[string]any

// String returns the string stored under key, or "" when absent or not a string.
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Strings returns the []string stored under key.
func (d Data) Strings(key string) []string {
	v, _ := d[key].([]string)
	return v
}

// Table returns the [][]string stored under key.
func (d Data) Table(key string) [][]string {
	v, _ := d[key].([][]string)
	return v
}

// Has reports whether key is present.
func (d Data) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Replace overwrites d in place with the contents of src. The map identity is
// kept so fields bound to d keep seeing the live values.
func (d Data) Replace(src Data) {
	next := make(Data, len(src))
	for k, v := range src {
		next[k] = v
	}
	clear(d)
	for k, v := range next {
		d[k] = v
	}
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		switch t := v.(type) {
		case []string:
			out[k] = append([]string(nil), t...)
		case [][]string:
			rows := make([][]string, len(t))
			for i, r := range t {
				rows[i] = append([]string(nil), r...)
			}
			out[k] = rows
		default:
			out[k] = v
		}
	}
	return out
}

// EditRequest asks the host for a new value of a field.
type EditRequest struct {
	Key       string
	Label     string
	Current   string
	Multiline bool
}

// Context is what a field may use from the tool context.
type Context interface {
	EditText(req EditRequest) (string, bool)
}

// Field is a rectangular interactive region bound to one data key.
type Field interface {
	Key() string
	// LocalRect is the field rectangle relative to the owning page origin.
	LocalRect() vector.Rect
	// Hit tests a page-local point.
	Hit(local vector.Pt) bool
	Draw(s render.Surface, at vector.Pt, highlighted bool)
	MouseReleased(ctx Context, local vector.Pt)
}

// UnboundKeyError reports a field whose key is missing from the page data.
type UnboundKeyError struct{ Key string }

func (e *UnboundKeyError) Error() string { return fmt.Sprintf("field key %q not present in page data", e.Key) }
