package services

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestClassifyCover(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		kind  CoverKind
		value string
	}{
		{
			"storage path",
			"u1/123.jpg",
			CoverKindPath,
			"u1/123.jpg",
		},
		{
			"legacy public URL",
			"https://cdn.example.com/storage/v1/object/public/covers/u1/456.jpg",
			CoverKindLegacy,
			"u1/456.jpg",
		},
		{
			"external URL",
			"https://image.tmdb.org/poster.jpg",
			CoverKindExternal,
			"https://image.tmdb.org/poster.jpg",
		},
		{
			"http external",
			"http://covers.openlibrary.org/b/id/1-M.jpg",
			CoverKindExternal,
			"http://covers.openlibrary.org/b/id/1-M.jpg",
		},
		{
			"bare filename",
			"cover.png",
			CoverKindPath,
			"cover.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyCover(tt.raw)
			if got.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.kind)
			}
			if got.Value != tt.value {
				t.Errorf("Value = %s, want %s", got.Value, tt.value)
			}
		})
	}
}

func TestResolveCovers_SingleBatchCall(t *testing.T) {
	store := newFakeStore()
	store.objects["u1/123.jpg"] = []byte("a")
	store.objects["u1/456.jpg"] = []byte("b")
	svc := NewCoverService(store)

	refA := "u1/123.jpg"
	refB := "https://cdn.example.com/storage/v1/object/public/covers/u1/456.jpg"
	refC := "https://image.tmdb.org/poster.jpg"

	resolved := svc.ResolveCovers(context.Background(), []string{refA, refB, refC})

	if len(store.batchCalls) != 1 {
		t.Fatalf("Expected exactly 1 batch call, got %d", len(store.batchCalls))
	}

	paths := append([]string(nil), store.batchCalls[0]...)
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "u1/123.jpg" || paths[1] != "u1/456.jpg" {
		t.Errorf("Batch call should carry {u1/123.jpg, u1/456.jpg}, got %v", paths)
	}

	if resolved[refA] == "" {
		t.Error("Path reference should resolve to a signed URL")
	}
	if resolved[refB] == "" {
		t.Error("Legacy reference should resolve via its rewritten path")
	}
	if resolved[refC] != refC {
		t.Errorf("External reference must pass through untouched, got %s", resolved[refC])
	}
}

func TestResolveCovers_DeduplicatesSharedPaths(t *testing.T) {
	store := newFakeStore()
	store.objects["u1/123.jpg"] = []byte("a")
	svc := NewCoverService(store)

	// Two items share one cover; the batch still carries the path once
	// and both get the URL back.
	refs := []string{"u1/123.jpg", "u1/123.jpg"}
	resolved := svc.ResolveCovers(context.Background(), refs)

	if len(store.batchCalls) != 1 || len(store.batchCalls[0]) != 1 {
		t.Fatalf("Expected one batch call with one path, got %v", store.batchCalls)
	}
	if resolved["u1/123.jpg"] == "" {
		t.Error("Shared path should resolve")
	}
}

func TestResolveCovers_PartialBatchDegrades(t *testing.T) {
	store := newFakeStore()
	store.objects["u1/123.jpg"] = []byte("a")
	// u1/456.jpg intentionally absent: the backend cannot sign it.
	svc := NewCoverService(store)

	refA := "u1/123.jpg"
	refB := "https://cdn.example.com/storage/v1/object/public/covers/u1/456.jpg"

	resolved := svc.ResolveCovers(context.Background(), []string{refA, refB})

	if resolved[refA] == "" {
		t.Error("Signable reference should still resolve")
	}
	if _, ok := resolved[refB]; ok {
		t.Error("Unsignable reference must be absent (placeholder), not an error")
	}
}

func TestResolveCovers_BatchFailureKeepsExternals(t *testing.T) {
	store := newFakeStore()
	store.batchErr = errors.New("backend down")
	svc := NewCoverService(store)

	refPath := "u1/123.jpg"
	refExt := "https://image.tmdb.org/poster.jpg"

	resolved := svc.ResolveCovers(context.Background(), []string{refPath, refExt})

	if resolved[refExt] != refExt {
		t.Error("External URLs should survive a backend outage")
	}
	if _, ok := resolved[refPath]; ok {
		t.Error("Unsigned path should degrade to placeholder")
	}
}

func TestResolveCovers_EmptyAndBlankRefs(t *testing.T) {
	store := newFakeStore()
	svc := NewCoverService(store)

	resolved := svc.ResolveCovers(context.Background(), []string{"", ""})

	if len(resolved) != 0 {
		t.Errorf("Blank references resolve to nothing, got %v", resolved)
	}
	if len(store.batchCalls) != 0 {
		t.Error("No batch call should be made for blank references")
	}
}
