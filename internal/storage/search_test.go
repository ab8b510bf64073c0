/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"testing"
	"time"
)

func TestSearchAndLinks(t *testing.T) {
	root := t.TempDir()
	doc := sampleDocument()
	if _, err := Init(root, doc); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, root, doc); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}

	// 1) FTS search
	res, err := Search(ctx, root, SearchQuery{Text: "valve"})
	if err != nil {
		t.Fatalf("search 1: %v", err)
	}
	if len(res) != 1 || res[0].PageID != "p-desc" || res[0].Key != "text" || res[0].Type != "description" {
		t.Fatalf("unexpected results for 'valve': %+v", res)
	}
	if res[0].Snippet == "" {
		t.Fatalf("expected snippet")
	}

	// 2) changelog rows are indexed per row
	res, err = Search(ctx, root, SearchQuery{Text: "safety"})
	if err != nil {
		t.Fatalf("search 2: %v", err)
	}
	if len(res) != 1 || res[0].Path != "page:p-log/rows/1" {
		t.Fatalf("unexpected results for 'safety': %+v", res)
	}

	// 3) kind filter without text
	res, err = Search(ctx, root, SearchQuery{Kinds: []string{"title"}})
	if err != nil {
		t.Fatalf("search 3: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected title and subtitle entries, got %+v", res)
	}
	for _, r := range res {
		if r.PageID != "p-title" {
			t.Fatalf("kind filter leaked %+v", r)
		}
	}

	// 4) key and page filters
	res, err = Search(ctx, root, SearchQuery{Keys: []string{"title"}, PageID: "p-desc"})
	if err != nil {
		t.Fatalf("search 4: %v", err)
	}
	if len(res) != 1 || res[0].Snippet != "Goals" {
		t.Fatalf("unexpected key+page results: %+v", res)
	}

	// 5) limit
	res, err = Search(ctx, root, SearchQuery{Limit: 2})
	if err != nil || len(res) != 2 {
		t.Fatalf("limit: %d %v", len(res), err)
	}

	// 6) links mirrored from the manifest
	to, err := LinkedFrom(ctx, root, "p-title")
	if err != nil {
		t.Fatalf("LinkedFrom: %v", err)
	}
	if len(to) != 1 || to[0] != "p-log" {
		t.Fatalf("LinkedFrom = %v", to)
	}
	from, err := LinkedTo(ctx, root, "p-title")
	if err != nil {
		t.Fatalf("LinkedTo: %v", err)
	}
	if len(from) != 1 || from[0] != "m-start" {
		t.Fatalf("LinkedTo = %v", from)
	}
}

func TestUpdateIndexReplacesContent(t *testing.T) {
	root := t.TempDir()
	doc := sampleDocument()
	ctx := context.Background()
	if err := BuildIndexIfEmpty(ctx, root, doc); err != nil {
		t.Fatalf("BuildIndexIfEmpty: %v", err)
	}
	doc.Pages[2].Data["text"] = "Explain the pump"
	// non-empty index is left alone
	if err := BuildIndexIfEmpty(ctx, root, doc); err != nil {
		t.Fatalf("BuildIndexIfEmpty: %v", err)
	}
	if res, _ := Search(ctx, root, SearchQuery{Text: "pump"}); len(res) != 0 {
		t.Fatalf("BuildIndexIfEmpty should not reindex a populated index")
	}
	if err := UpdateIndex(ctx, root, doc); err != nil {
		t.Fatalf("UpdateIndex: %v", err)
	}
	if res, _ := Search(ctx, root, SearchQuery{Text: "pump"}); len(res) != 1 {
		t.Fatalf("expected updated text to be found, got %+v", res)
	}
	if res, _ := Search(ctx, root, SearchQuery{Text: "valve"}); len(res) != 0 {
		t.Fatalf("stale text still indexed: %+v", res)
	}
}

func TestSearchRequiresRoot(t *testing.T) {
	if _, err := Search(context.Background(), " ", SearchQuery{Text: "x"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := LinkedFrom(context.Background(), t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
