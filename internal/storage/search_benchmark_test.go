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
	"fmt"
	"testing"
	"time"

	"docflow/internal/domain"
)

func benchDocument(n int) domain.Document {
	doc := domain.Document{Name: "Bench"}
	for i := 0; i < n; i++ {
		doc.Pages = append(doc.Pages, domain.PageRecord{
			ID: fmt.Sprintf("p%d", i), Kind: "description", Width: 100, Height: 100,
			Data: map[string]any{"title": fmt.Sprintf("Section %d", i), "text": "Hello world benchmark"},
		})
	}
	return doc
}

func BenchmarkSearchFTS(b *testing.B) {
	root := b.TempDir()
	doc := benchDocument(50)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, root, doc); err != nil {
		b.Fatalf("RebuildIndex: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Search(ctx, root, SearchQuery{Text: "Hello"})
		if err != nil {
			b.Fatalf("Search: %v", err)
		}
	}
}

func BenchmarkRebuildIndex(b *testing.B) {
	root := b.TempDir()
	doc := benchDocument(50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = RebuildIndex(ctx, root, doc)
		cancel()
	}
}
