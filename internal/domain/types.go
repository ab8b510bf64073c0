/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the persisted document model. It serializes to the
// human-readable JSON manifest stored in every document directory.

// Document is a board of pages plus the links and markers that describe the
// document flow.
type Document struct {
	Name     string         `json:"name"`
	Metadata Metadata       `json:"metadata,omitempty"`
	Pages    []PageRecord   `json:"pages"`
	Links    []Link         `json:"links,omitempty"`
	Markers  []MarkerRecord `json:"markers,omitempty"`
}

// Metadata contains optional descriptive metadata for a document.
type Metadata struct {
	Author string `json:"author,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// PageRecord is the persisted form of a page. Data holds the page's field
// values verbatim: strings, string lists (column headers) and string tables.
type PageRecord struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"` // title, changelog, description, empty
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Data   map[string]any `json:"data"`
}

// Endpoint names one side of a link.
type Endpoint struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // start, end, page
}

// Link is a directional connection between two components.
type Link struct {
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`
}

// MarkerRecord is a persisted start or end marker.
type MarkerRecord struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"` // start or end
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PageByID returns the page record with the given id.
func (d *Document) PageByID(id string) (*PageRecord, bool) {
	for i := range d.Pages {
		if d.Pages[i].ID == id {
			return &d.Pages[i], true
		}
	}
	return nil, false
}
