/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package page

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"docflow/internal/domain"
	"docflow/internal/field"
)

// FromRecord rebuilds a page from its persisted form. The variant constructor
// recreates the fields; the stored data then replaces the defaults in place.
func FromRecord(rec domain.PageRecord) (*Page, error) {
	opts := []Option{WithID(rec.ID), WithPosition(rec.X, rec.Y)}
	if rec.Width > 0 && rec.Height > 0 {
		opts = append(opts, WithSize(rec.Width, rec.Height))
	}
	p, err := New(Kind(rec.Kind), opts...)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", rec.ID, err)
	}
	if rec.Data == nil {
		return p, nil
	}
	data := normalizeData(rec.Data)
	if p.kind == KindChangelog {
		migrateRows(data)
	}
	if err := p.Restore(data); err != nil {
		return nil, fmt.Errorf("load page %s: %w", rec.ID, err)
	}
	return p, nil
}

// valueKinds maps every data key of every variant to its default value, so
// an empty JSON array decodes to the shape the key is declared with.
var valueKinds = func() field.Data {
	out := field.Data{}
	for _, v := range variants {
		for k, def := range v.defaults() {
			out[k] = def
		}
	}
	return out
}()

// normalizeData converts decoded JSON values to the data value types: string,
// []string and [][]string.
func normalizeData(in map[string]any) field.Data {
	out := make(field.Data, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v, valueKinds[k])
	}
	return out
}

func normalizeValue(v, like any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string, []string, [][]string:
		return t
	case []any:
		if len(t) == 0 {
			if _, table := like.([][]string); table {
				return [][]string{}
			}
			return []string{}
		}
		if _, nested := t[0].([]any); nested {
			rows := make([][]string, 0, len(t))
			for _, r := range t {
				rows = append(rows, toStrings(r))
			}
			return rows
		}
		return toStrings(t)
	default:
		return fmt.Sprint(t)
	}
}

func toStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(it))
	}
	return out
}

// migrateRows folds numbered row keys (row1, row2, ...) into the ordered rows
// table, after any rows already present.
func migrateRows(d field.Data) {
	type numbered struct {
		n   int
		key string
	}
	var legacy []numbered
	for k := range d {
		if !strings.HasPrefix(k, "row") || k == "rows" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(k, "row"))
		if err != nil {
			continue
		}
		legacy = append(legacy, numbered{n: n, key: k})
	}
	if len(legacy) == 0 {
		if !d.Has("rows") {
			d["rows"] = [][]string{}
		}
		return
	}
	sort.Slice(legacy, func(i, j int) bool { return legacy[i].n < legacy[j].n })
	rows := d.Table("rows")
	for _, l := range legacy {
		rows = append(rows, d.Strings(l.key))
		delete(d, l.key)
	}
	d["rows"] = rows
}

// EncodeData serializes page data for undo snapshots and the search index.
func EncodeData(d field.Data) ([]byte, error) { return json.Marshal(d) }

// DecodeData is the inverse of EncodeData.
func DecodeData(b []byte) (field.Data, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode page data: %w", err)
	}
	return normalizeData(raw), nil
}
