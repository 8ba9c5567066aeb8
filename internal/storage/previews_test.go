/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func openCache(t *testing.T, maxBytes int64) *PreviewCache {
	t.Helper()
	c, err := OpenPreviewCache(t.TempDir(), maxBytes)
	if err != nil {
		t.Fatalf("OpenPreviewCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPreviewPutGet(t *testing.T) {
	c := openCache(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if b, err := c.Get(ctx, "abc", 72); err != nil || b != nil {
		t.Fatalf("expected miss, got %v %v", b, err)
	}
	if err := c.Put(ctx, "abc", 72, 10, 20, []byte("png-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, err := c.Get(ctx, "abc", 72)
	if err != nil || !bytes.Equal(b, []byte("png-bytes")) {
		t.Fatalf("Get = %q, %v", b, err)
	}
	// other DPI is another entry
	if b, _ := c.Get(ctx, "abc", 144); b != nil {
		t.Fatalf("expected miss for other dpi")
	}
	// upsert replaces
	if err := c.Put(ctx, "abc", 72, 10, 20, []byte("v2")); err != nil {
		t.Fatalf("Put v2: %v", err)
	}
	if n, _ := c.Len(ctx); n != 1 {
		t.Fatalf("expected 1 entry after upsert, got %d", n)
	}
	if total, _ := c.TotalBytes(ctx); total != 2 {
		t.Fatalf("TotalBytes = %d", total)
	}
	if err := c.Put(ctx, "", 72, 1, 1, []byte("x")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestPreviewEvictionKeepsRecentlyUsed(t *testing.T) {
	c := openCache(t, 100)
	ctx := context.Background()
	blob := make([]byte, 40)
	for _, k := range []string{"a", "b"} {
		if err := c.Put(ctx, k, 72, 1, 1, blob); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	// touch a so b becomes the least recently used
	if _, err := c.Get(ctx, "a", 72); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, "c", 72, 1, 1, blob); err != nil {
		t.Fatalf("Put c: %v", err)
	}
	total, _ := c.TotalBytes(ctx)
	if total > 100 {
		t.Fatalf("cache over cap: %d", total)
	}
	if b, _ := c.Get(ctx, "b", 72); b != nil {
		t.Fatal("expected b to be evicted")
	}
	if b, _ := c.Get(ctx, "a", 72); b == nil {
		t.Fatal("expected a to survive")
	}
}

func TestPreviewGetOrCreate(t *testing.T) {
	c := openCache(t, 0)
	ctx := context.Background()
	calls := 0
	gen := func(context.Context) ([]byte, int, int, error) {
		calls++
		return []byte("rendered"), 3, 4, nil
	}
	for i := 0; i < 3; i++ {
		b, err := c.GetOrCreate(ctx, "k", 72, gen)
		if err != nil || string(b) != "rendered" {
			t.Fatalf("GetOrCreate = %q, %v", b, err)
		}
	}
	if calls != 1 {
		t.Fatalf("generator called %d times, want 1", calls)
	}
	boom := errors.New("render failed")
	if _, err := c.GetOrCreate(ctx, "other", 72, func(context.Context) ([]byte, int, int, error) { return nil, 0, 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestOpenPreviewCacheIsReopenable(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenPreviewCache(dir, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := c.Put(ctx, "persist", 72, 1, 1, []byte("x")); err != nil {
		t.Fatal(err)
	}
	_ = c.Close()

	c2, err := OpenPreviewCache(dir, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()
	var schema int
	if err := c2.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil || schema != schemaVersion {
		t.Fatalf("schema = %d, %v", schema, err)
	}
	if b, _ := c2.Get(ctx, "persist", 72); string(b) != "x" {
		t.Fatalf("entry lost across reopen: %q", b)
	}
	if _, err := OpenPreviewCache("", 0); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
