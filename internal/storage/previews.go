/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// accessStamp orders entries for LRU eviction; nanoseconds keep rapid
// successive writes distinguishable.
func accessStamp() int64 { return time.Now().UnixNano() }

// Get returns the cached blob for key at dpi and refreshes its access time.
// A miss returns (nil, nil).
func (c *PreviewCache) Get(ctx context.Context, key string, dpi int) ([]byte, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT png_blob FROM previews WHERE key=? AND dpi=?`, key, dpi).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	_, _ = c.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE key=? AND dpi=?`, accessStamp(), key, dpi)
	return blob, nil
}

// Put upserts a blob with its pixel size and then evicts least recently used
// entries until the cache fits its cap.
func (c *PreviewCache) Put(ctx context.Context, key string, dpi, w, h int, blob []byte) error {
	if key == "" {
		return errors.New("preview key is required")
	}
	if len(blob) == 0 {
		return errors.New("empty preview blob")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `INSERT INTO previews(key,dpi,w,h,png_blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(key,dpi) DO UPDATE SET w=excluded.w, h=excluded.h, png_blob=excluded.png_blob,
			size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key, dpi, w, h, blob, len(blob), now, accessStamp())
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if c.maxBytes > 0 {
		return c.EvictToFit(ctx, c.maxBytes)
	}
	return nil
}

// GetOrCreate returns the cached blob or produces it with gen and stores it.
func (c *PreviewCache) GetOrCreate(ctx context.Context, key string, dpi int, gen func(context.Context) (blob []byte, w, h int, err error)) ([]byte, error) {
	if b, err := c.Get(ctx, key, dpi); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	blob, w, h, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, key, dpi, w, h, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// EvictToFit deletes least recently used rows until the total size is <= capBytes.
func (c *PreviewCache) EvictToFit(ctx context.Context, capBytes int64) error {
	total, err := c.TotalBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY COALESCE(last_access, 0) ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	victims := make([]any, 0, 16)
	cur := total
	for cur > capBytes && rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// the single connection must be free before we write
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (?` + strings.Repeat(",?", len(victims)-1) + `)`
	if _, err := c.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalBytes sums the blob sizes tracked by the cache.
func (c *PreviewCache) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum previews size: %w", err)
	}
	return total, nil
}

// Len returns the number of cached previews.
func (c *PreviewCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM previews`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
