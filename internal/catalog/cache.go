package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON-encodable catalog responses by key.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Put(ctx context.Context, key string, v any) error
}

// SQLiteCache keeps entries in the catalog_cache table as JSONB documents.
// The table is created by the migrations package.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLiteCache(db *sql.DB, ttl time.Duration) *SQLiteCache {
	return &SQLiteCache{db: db, ttl: ttl, now: time.Now}
}

func (c *SQLiteCache) Get(ctx context.Context, key string, dest any) error {
	var (
		data      string
		expiresAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT json(data), expires_at FROM catalog_cache WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("reading cache entry %q: %w", key, err)
	}
	if expiresAt <= c.now().Unix() {
		return ErrCacheMiss
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *SQLiteCache) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO catalog_cache (key, data, expires_at) VALUES (?, jsonb(?), ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, string(data), c.now().Add(c.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %q: %w", key, err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed.
func (c *SQLiteCache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM catalog_cache WHERE expires_at <= ?`, c.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// RedisCache keeps entries as JSON strings with a native expiry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "blindtest:catalog:"}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("reading cache entry %q: %w", key, err)
	}
	return json.Unmarshal(data, dest)
}

func (c *RedisCache) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry %q: %w", key, err)
	}
	return nil
}
