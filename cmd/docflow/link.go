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

	"github.com/spf13/cobra"

	"docflow/internal/storage"
)

func newLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link <dir> <from> <to>",
		Short: "Link two pages, or a marker and a page",
		Long: `Link adds a directional link. <from> and <to> are page or marker IDs (or
unique prefixes); "start" and "end" name the markers. Links never leave the
end marker or enter the start marker, and a component cannot link to itself.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			from, err := a.resolve(args[1])
			if err != nil {
				return err
			}
			to, err := a.resolve(args[2])
			if err != nil {
				return err
			}
			if err := a.b.Link(from, to); err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s -> %s\n", from, to)
			return nil
		},
	}
}

func newLinksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "links <dir> <id>",
		Short: "Show what links into and out of a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(args[0]); err != nil {
				return err
			}
			id, err := a.resolve(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.ensureIndex(cmd); err != nil {
				return err
			}
			out, err := storage.LinkedFrom(ctx, a.h.Root, id)
			if err != nil {
				return err
			}
			in, err := storage.LinkedTo(ctx, a.h.Root, id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, s := range in {
				fmt.Fprintf(w, "in   %s\n", s)
			}
			for _, s := range out {
				fmt.Fprintf(w, "out  %s\n", s)
			}
			return nil
		},
	}
}
