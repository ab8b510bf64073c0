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

// SVG renders the board as an SVG document whose viewBox is the drawn area in
// document units.
func SVG(w io.Writer, b *board.Board, opt Options) error {
	return Write(w, b, FormatSVG, opt)
}

func encodeSVG(w io.Writer, sc scene, dpi int) error {
	s := render.NewSVG(sc.view, dpi)
	sc.draw(s)
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}
