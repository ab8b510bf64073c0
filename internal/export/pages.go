/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"

	"docflow/internal/board"
	"docflow/internal/page"
	"docflow/internal/render"
)

// pageMargin leaves room for the frame label drawn above each page.
const pageMargin = 60

// Pages writes every page on its own into dir as <n>-<kind>.<format>, in board
// order, and returns the written paths. Links are never drawn.
func Pages(b *board.Board, dir string, f Format, opt Options) ([]string, error) {
	if b == nil {
		return nil, fmt.Errorf("board is nil")
	}
	pages := b.Pages()
	if len(pages) == 0 {
		return nil, ErrEmptyBoard
	}
	out := make([]string, 0, len(pages))
	for i, p := range pages {
		sc := pageScene(b, p, opt)
		name := filepath.Join(dir, fmt.Sprintf("%02d-%s.%s", i+1, p.Kind(), f))
		if err := writeFile(name, sc, f, opt); err != nil {
			return out, fmt.Errorf("page %d: %w", i+1, err)
		}
		out = append(out, name)
	}
	return out, nil
}

func pageScene(b *board.Board, p *page.Page, opt Options) scene {
	m := opt.Margin
	if m < pageMargin {
		m = pageMargin
	}
	title := opt.Title
	if title == "" {
		title = fmt.Sprintf("%s - %s", b.Name, p.Label())
	}
	return scene{
		view:  p.Bounds().Expand(m),
		title: title,
		draw:  func(s render.Surface) { p.Draw(s, b.Tool(), offCanvas) },
	}
}
