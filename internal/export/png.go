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
	"image/png"
	"io"
	"math"

	"docflow/internal/board"
	"docflow/internal/render"
)

// PNG renders the board as a single image at opt.DPI.
func PNG(w io.Writer, b *board.Board, opt Options) error {
	return Write(w, b, FormatPNG, opt)
}

func encodePNG(w io.Writer, sc scene, dpi int) error {
	// Calculate pixel dimensions from points (1pt = 1/72")
	scale := float64(dpi) / 72.0
	pixW := int(math.Round(sc.view.W * scale))
	pixH := int(math.Round(sc.view.H * scale))
	if pixW <= 0 || pixH <= 0 {
		return fmt.Errorf("empty png area %dx%d", pixW, pixH)
	}
	if pixW > maxPixels || pixH > maxPixels {
		return fmt.Errorf("png %dx%d exceeds %d pixels per side; lower the dpi", pixW, pixH, maxPixels)
	}
	r := render.NewRaster(sc.view, pixW, pixH)
	sc.draw(r)
	if err := png.Encode(w, r.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
