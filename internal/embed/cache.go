// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/minio/highwayhash"
)

// Cache wraps an Embedder with a SQLite-backed vector cache. Repeated
// runs over the same documents then hit the embedding backend only for
// unseen text. Vectors are keyed by (embedder name, text hash); a
// cache file can safely serve several backends.
type Cache struct {
	db    *sql.DB
	inner Embedder
}

// NewCache opens or creates the cache database at path and wraps inner.
func NewCache(path string, inner Embedder) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS embeddings (
			model TEXT NOT NULL,
			text_hash TEXT NOT NULL,
			vector TEXT NOT NULL,
			PRIMARY KEY (model, text_hash)
		)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db, inner: inner}, nil
}

// Name returns the wrapped embedder's identifier.
func (c *Cache) Name() string { return c.inner.Name() }

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Embed returns the cached vector for text, or delegates to the wrapped
// embedder and stores the result. A failed cache write does not fail
// the embedding.
func (c *Cache) Embed(ctx context.Context, text string) ([]float64, error) {
	key := textKey(text)

	var encoded string
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE model = ? AND text_hash = ?`,
		c.inner.Name(), key,
	).Scan(&encoded)
	switch {
	case err == nil:
		var vec []float64
		if jsonErr := json.Unmarshal([]byte(encoded), &vec); jsonErr == nil {
			return vec, nil
		}
		// Undecodable row: fall through and overwrite it.
	case err != sql.ErrNoRows:
		return nil, fmt.Errorf("reading embedding cache: %w", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if encodedVec, jsonErr := json.Marshal(vec); jsonErr == nil {
		_, _ = c.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO embeddings (model, text_hash, vector) VALUES (?, ?, ?)`,
			c.inner.Name(), key, string(encodedVec),
		)
	}
	return vec, nil
}

// textKey hashes text into a stable cache key.
func textKey(text string) string {
	return fmt.Sprintf("%016x", highwayhash.Sum64([]byte(text), hashKey))
}
