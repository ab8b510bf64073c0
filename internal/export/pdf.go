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
	"io"

	"docflow/internal/board"
	"docflow/internal/render"
)

// PDF renders the board onto one PDF page in points, so the page matches the
// drawn area 1:1. Text uses the built-in Helvetica.
func PDF(w io.Writer, b *board.Board, opt Options) error {
	return Write(w, b, FormatPDF, opt)
}

func encodePDF(w io.Writer, sc scene) error {
	p := render.NewPDF(sc.view, sc.title)
	sc.draw(p)
	if err := p.Err(); err != nil {
		return fmt.Errorf("draw pdf: %w", err)
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
