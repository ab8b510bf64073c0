/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"docflow/internal/board"
	"docflow/internal/config"
	"docflow/internal/render"
	"docflow/internal/vector"
)

// Format names an output file type.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
)

// Formats lists every supported format.
func Formats() []Format { return []Format{FormatPNG, FormatPDF, FormatSVG} }

// ErrEmptyBoard is returned when there is nothing to draw.
var ErrEmptyBoard = errors.New("board has no pages or markers")

// maxPixels caps either side of a raster export.
const maxPixels = 16384

// Options controls board exports.
// - DPI: output resolution for PNG and the SVG width/height attributes; 72 means 1px per point
// - Margin: blank document units around the drawn area
// - Links: draw link arrows
type Options struct {
	DPI    int
	Margin float64
	Links  bool
	Title  string
}

// OptionsFromConfig maps the export section of the YAML config.
func OptionsFromConfig(c config.ExportConfig) Options {
	return Options{DPI: c.DPI, Margin: c.Margin, Links: c.DrawLinks}
}

func (o Options) dpi() int {
	if o.DPI <= 0 {
		return 72
	}
	return o.DPI
}

// ParseFormat accepts "png", ".PNG" and the like.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, k := range Formats() {
		if f == k {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// offCanvas is a pointer position no page is ever near, so exports carry no hover highlight.
var offCanvas = vector.Pt{X: math.Inf(-1), Y: math.Inf(-1)}

// scene is one exportable drawing: the document area to show and how to paint it.
type scene struct {
	view  vector.Rect
	title string
	draw  func(render.Surface)
}

func boardScene(b *board.Board, opt Options) (scene, error) {
	if b == nil {
		return scene{}, errors.New("board is nil")
	}
	if len(b.Pages()) == 0 && len(b.Markers()) == 0 {
		return scene{}, ErrEmptyBoard
	}
	title := opt.Title
	if title == "" {
		title = b.Name
	}
	return scene{
		view:  b.Bounds().Expand(opt.Margin),
		title: title,
		draw:  func(s render.Surface) { b.DrawWith(s, offCanvas, opt.Links) },
	}, nil
}

// Write renders the whole board in format f to w.
func Write(w io.Writer, b *board.Board, f Format, opt Options) error {
	sc, err := boardScene(b, opt)
	if err != nil {
		return err
	}
	return writeScene(w, sc, f, opt)
}

func writeScene(w io.Writer, sc scene, f Format, opt Options) error {
	switch f {
	case FormatPNG:
		return encodePNG(w, sc, opt.dpi())
	case FormatPDF:
		return encodePDF(w, sc)
	case FormatSVG:
		return encodeSVG(w, sc, opt.dpi())
	default:
		return fmt.Errorf("unknown format: %q", f)
	}
}

// ToFile renders the board to path, choosing the format from its extension.
func ToFile(b *board.Board, path string, opt Options) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	sc, err := boardScene(b, opt)
	if err != nil {
		return err
	}
	return writeFile(path, sc, f, opt)
}

func writeFile(path string, sc scene, f Format, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	if err := writeScene(out, sc, f, opt); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f, err)
	}
	return nil
}
