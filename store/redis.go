package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/schema-tools/schemaid/identity"
	"github.com/schema-tools/schemaid/report"
)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// Prefix namespaces all registry keys. Defaults to "schemaid".
	Prefix string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// RedisRegistry implements Registry using go-redis/v9. Records live in a
// hash keyed by schema name; the identifier set is a plain Redis set.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

// NewRedisRegistry creates a Redis-backed registry and verifies connectivity.
func NewRedisRegistry(opts RedisOptions) (*RedisRegistry, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = "schemaid"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRegistry{client: client, prefix: opts.Prefix}, nil
}

func (r *RedisRegistry) recordsKey() string { return r.prefix + ":records" }
func (r *RedisRegistry) idsKey() string     { return r.prefix + ":ids" }

// Record stores the report under its schema name (HSETNX, first writer wins)
// and adds its identifier to the identifier set.
func (r *RedisRegistry) Record(ctx context.Context, rep report.Report) error {
	if rep.Name == "" {
		return ErrUnnamed
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSetNX(ctx, r.recordsKey(), rep.Name, data)
	pipe.SAdd(ctx, r.idsKey(), rep.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

// Seen reports whether the identifier is in the identifier set.
func (r *RedisRegistry) Seen(ctx context.Context, id identity.Identifier) (bool, error) {
	member, err := r.client.SIsMember(ctx, r.idsKey(), id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check identifier: %w", err)
	}
	return member, nil
}

// Lookup returns the record stored under a schema name.
func (r *RedisRegistry) Lookup(ctx context.Context, name string) (report.Report, bool, error) {
	data, err := r.client.HGet(ctx, r.recordsKey(), name).Bytes()
	if err == redis.Nil {
		return report.Report{}, false, nil
	}
	if err != nil {
		return report.Report{}, false, fmt.Errorf("failed to fetch record: %w", err)
	}

	rep, err := decodeRecord(data)
	if err != nil {
		return report.Report{}, false, err
	}
	return rep, true, nil
}

// List returns all stored records.
func (r *RedisRegistry) List(ctx context.Context) ([]report.Report, error) {
	raw, err := r.client.HGetAll(ctx, r.recordsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]report.Report, 0, len(raw))
	for name, data := range raw {
		rep, err := decodeRecord([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}
		records = append(records, rep)
	}
	return records, nil
}

// Close closes the Redis connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
