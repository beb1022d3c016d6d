package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wudi/edgegate/internal/logging"
)

// RedisStore is a Redis-backed store implementing Store. It is the
// production backing for the persistent edge cache service.
//
// Every operation runs under its own short timeout so a slow backend cannot
// stall the request path. Failures are logged and degraded: Get becomes a
// miss, Put and Delete become no-ops, Keys becomes empty.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
	opTimeout time.Duration
}

const (
	defaultRetention = 24 * time.Hour
	defaultOpTimeout = 100 * time.Millisecond
	scanTimeout      = 5 * time.Second
)

// NewRedisStore creates a Redis-backed store under the given key prefix.
// prefix separates logical namespaces, e.g. "eg:pages:" vs "eg:api:".
//
// retention is handed to Redis as a coarse key expiry so entries that are
// never read again eventually age out of storage; it must be comfortably
// larger than any policy TTL, since freshness itself is decided by the Gate.
func NewRedisStore(client *redis.Client, prefix string, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		retention: retention,
		opTimeout: defaultOpTimeout,
	}
}

func init() {
	// Register http.Header for gob encoding (it's a map[string][]string).
	gob.Register(http.Header{})
}

func (s *RedisStore) Get(key string) (*Entry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Warn("redis cache get failed, treating as miss", zap.Error(err))
		}
		return nil, false
	}

	var entry Entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		// An undecodable entry would otherwise sit in the store forever;
		// remove it rather than miss on it repeatedly.
		logging.Warn("redis cache decode failed, deleting entry", zap.Error(err))
		s.Delete(key)
		return nil, false
	}
	return &entry, true
}

func (s *RedisStore) Put(key string, entry *Entry) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		logging.Warn("redis cache encode failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, buf.Bytes(), s.retention).Err(); err != nil {
		logging.Warn("redis cache set failed", zap.Error(err))
	}
}

func (s *RedisStore) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		logging.Warn("redis cache delete failed", zap.Error(err))
	}
}

func (s *RedisStore) Keys() []string {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			logging.Warn("redis cache scan failed", zap.Error(err))
			return keys
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, s.prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys
}
