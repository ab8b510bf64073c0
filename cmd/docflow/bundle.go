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
	"log/slog"

	"github.com/spf13/cobra"

	"docflow/internal/bundle"
	"docflow/internal/storage"
)

func newPackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <dir> <out.zip>",
		Short: "Bundle a document and its exports into a zip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := bundle.Pack(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Packed %d file(s) into %s\n", n, args[1])
			return nil
		},
	}
}

func newUnpackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <zip> <dir>",
		Short: "Unpack a document bundle into a directory",
		Long: `Unpack extracts a bundle created by "docflow pack". Files that already exist
in <dir> are kept. The search index is rebuilt from the unpacked manifest.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, n, err := bundle.Unpack(args[0], args[1])
			if err != nil {
				return err
			}
			if err := storage.UpdateIndex(cmd.Context(), h.Root, h.Document); err != nil {
				a.log.Warn("index update failed", slog.Any("err", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unpacked %d file(s) into %s (%d pages)\n", n, h.Root, len(h.Document.Pages))
			return nil
		},
	}
}
