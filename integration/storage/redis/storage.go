package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/multiform/core/storage"
)

// Compile-time check that Storage implements the storage.Engine interface.
var _ storage.Engine = (*Storage)(nil)

// Client defines the Redis operations used by Storage. *redis.Client
// satisfies it; tests can substitute a mock.
type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Config contains Redis engine configuration with environment variable
// mapping for core/config.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	TTL            time.Duration `env:"REDIS_UPLOAD_TTL"`
	KeyPrefix      string        `env:"REDIS_UPLOAD_KEY_PREFIX" envDefault:"multiform:upload:"`
}

// Connect creates a Redis client with retry logic and connection
// verification. It supports redis:// and rediss:// URL schemes.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %v", storage.ErrInvalidConfig, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var client *redis.Client
	for attempt := 1; ; attempt++ {
		client = redis.NewClient(opts)
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		client.Close()

		if attempt >= attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", storage.ErrOperationTimeout, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, fmt.Errorf("%w: redis unreachable: %v", storage.ErrServiceUnavailable, err)
}

// Storage commits uploads to Redis. Thread-safe; independent sessions share
// one instance.
type Storage struct {
	client Client
	ttl    time.Duration
	prefix string
}

// Option configures a Storage engine.
type Option func(*Storage)

// WithTTL expires stored uploads after the given duration. Zero keeps them
// until removed.
func WithTTL(ttl time.Duration) Option {
	return func(s *Storage) {
		s.ttl = ttl
	}
}

// WithKeyPrefix namespaces upload keys within a shared Redis instance.
func WithKeyPrefix(prefix string) Option {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

// New creates a Redis storage engine on an established client.
func New(client Client, opts ...Option) *Storage {
	s := &Storage{
		client: client,
		prefix: "multiform:upload:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store accumulates the body and commits it with a single SET, which is
// atomic: either the whole value lands in Redis or nothing does. Body read
// errors propagate unwrapped before any command is issued.
func (s *Storage) Store(ctx context.Context, meta storage.FileMeta, body io.Reader) (*storage.StoredFile, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, err
	}

	name := storage.SanitizeFilename(storage.KeepFilename(meta))
	if name == "" {
		name = uuid.NewString()
	}
	key := s.prefix + uuid.NewString()

	if err := s.client.Set(ctx, key, buf.Bytes(), s.ttl).Err(); err != nil {
		return nil, classifyRedisError(err, "store upload")
	}

	return &storage.StoredFile{
		Key:          key,
		FieldName:    meta.FieldName,
		OriginalName: meta.FileName,
		FileName:     name,
		ContentType:  meta.ContentType,
		Size:         int64(buf.Len()),
	}, nil
}

// Open returns a reader over a previously stored upload.
func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", storage.ErrFileNotFound, key)
		}
		return nil, classifyRedisError(err, "read upload")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Remove deletes a previously stored upload.
func (s *Storage) Remove(ctx context.Context, key string) error {
	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return classifyRedisError(err, "delete upload")
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", storage.ErrFileNotFound, key)
	}
	return nil
}

// classifyRedisError maps client failures onto the storage error taxonomy.
func classifyRedisError(err error, operation string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s operation", storage.ErrOperationTimeout, operation)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s operation", storage.ErrOperationCanceled, operation)
	default:
		return fmt.Errorf("%w: %s operation: %v", storage.ErrStoreFailed, operation, err)
	}
}
