package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
)

// CacheEntry is a stored verification result.
type CacheEntry struct {
	URL       string    `json:"url"`
	Status    int       `json:"status"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
	Failures  int       `json:"failures"`
}

// NATSStore caches verification results in a JetStream KV bucket and
// publishes broken-link events to a subject.
type NATSStore struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	kv      jetstream.KeyValue
	subject string
	ttl     time.Duration
}

// OpenNATSStore connects to the configured NATS server and binds the result
// cache bucket, creating it when absent.
func OpenNATSStore(cfg manifest.NATS, ttl time.Duration) (*NATSStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is not configured")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	store := &NATSStore{
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
		ttl:     ttl,
	}

	if err := store.initBucket(cfg.Bucket); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("link check cache ready",
		logfields.URL(cfg.URL),
		slog.String("bucket", cfg.Bucket),
		slog.String("subject", cfg.Subject))

	return store, nil
}

func (s *NATSStore) initBucket(bucket string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, err := s.js.KeyValue(ctx, bucket)
	if err == nil {
		s.kv = kv
		return nil
	}

	kv, err = s.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Link verification cache",
		MaxBytes:    64 * 1024 * 1024,
		History:     1,
	})
	if err != nil {
		return fmt.Errorf("create cache bucket: %w", err)
	}

	s.kv = kv
	return nil
}

// Get returns the cached entry for a URL, or nil when none is stored.
func (s *NATSStore) Get(ctx context.Context, url string) (*CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	raw, err := s.kv.Get(ctx, cacheKey(url))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw.Value(), &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

// Put stores a verification result.
func (s *NATSStore) Put(ctx context.Context, entry *CacheEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if _, err := s.kv.Put(ctx, cacheKey(entry.URL), data); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Fresh reports whether a cached entry is recent enough to reuse. Failed
// checks are never fresh so a broken link is retried on every run.
func (s *NATSStore) Fresh(entry *CacheEntry) bool {
	if entry == nil || !entry.OK {
		return false
	}
	return time.Since(entry.CheckedAt) < s.ttl
}

// PublishBroken emits a broken-link event on the configured subject.
func (s *NATSStore) PublishBroken(ctx context.Context, event *BrokenLink) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode broken link event: %w", err)
	}
	if _, err := s.js.Publish(ctx, s.subject, data); err != nil {
		return fmt.Errorf("publish broken link event: %w", err)
	}
	return nil
}

// Close drops the NATS connection.
func (s *NATSStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

// cacheKey maps a URL onto the restricted KV key alphabet.
func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
