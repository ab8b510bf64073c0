/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"docflow/internal/export"
	"docflow/internal/storage"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		format  string
		preset  string
		perPage bool
		dpi     int
		noLinks bool
	)
	cmd := &cobra.Command{
		Use:   "render <dir> [out]",
		Short: "Export the board as PNG, PDF or SVG",
		Long: `Render draws the whole board. With [out] the format follows its extension;
otherwise the file goes to the configured export directory. --preset (web,
print) and --per-page run a batch export instead.

Examples:
  docflow render ./handbook board.pdf
  docflow render ./handbook --format svg
  docflow render ./handbook --preset web --per-page`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			opt := export.OptionsFromConfig(a.cfg.Export)
			if noLinks {
				opt.Links = false
			}
			w := cmd.OutOrStdout()

			if preset != "" || perPage {
				p, err := export.ParsePreset(preset)
				if err != nil {
					return err
				}
				bo := export.BatchOptions{Preset: p, PerPage: perPage, DPIOverride: dpi}
				if cmd.Flags().Changed("format") {
					bo.Formats = []string{format}
				}
				if len(args) == 2 {
					bo.OutDir = args[1]
				}
				paths, err := export.Batch(a.h.Root, a.b, bo, opt)
				for _, path := range paths {
					fmt.Fprintln(w, "Written:", path)
				}
				return err
			}

			if dpi > 0 {
				opt.DPI = dpi
			}
			out := ""
			if len(args) == 2 {
				out = args[1]
			} else {
				f, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				out = filepath.Join(exportDir(a.h, a.cfg.Export.DefaultDir), "board."+string(f))
			}
			if err := export.ToFile(a.b, out, opt); err != nil {
				return err
			}
			fmt.Fprintln(w, "Written:", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "png", "Output format: png, pdf, svg")
	cmd.Flags().StringVar(&preset, "preset", "", "Batch preset: web, print")
	cmd.Flags().BoolVar(&perPage, "per-page", false, "Also write one file per page")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "Override the configured DPI")
	cmd.Flags().BoolVar(&noLinks, "no-links", false, "Do not draw link arrows")
	return cmd
}

// exportDir resolves the configured export directory against the document root.
func exportDir(h *storage.DocumentHandle, dir string) string {
	if dir == "" {
		dir = storage.ExportsDirName
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(h.Root, dir)
}
