// Package cache adaptadores de ListCache: Redis para producción y un mapa en memoria para
// desarrollo y pruebas.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventory-items/internal/application/usecase"
)

var _ usecase.ListCache = (*RedisCache)(nil)

// scanBatch claves pedidas por iteración de SCAN.
const scanBatch = 500

// RedisCache ListCache sobre Redis. DeletePrefix recorre con SCAN (no bloquea como KEYS) y borra con UNLINK.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache envuelve un cliente ya construido.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// OpenRedis conecta a partir de una URL redis:// o rediss:// y verifica con PING.
func OpenRedis(ctx context.Context, rawURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeletePrefix borra todas las claves que empiezan con prefix.
// Primero completa el SCAN y luego borra: borrar durante la iteración puede saltar claves.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	match := escapeGlob(prefix) + "*"
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := c.client.Unlink(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
	}
	return nil
}

// Ping health check.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// escapeGlob escapa los metacaracteres del patrón de SCAN MATCH.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
