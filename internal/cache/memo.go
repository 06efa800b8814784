package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// KeyPrefix starts every memoized key
const KeyPrefix = "courtside"

// ErrMiss is returned by a Store when the key is absent
var ErrMiss = errors.New("cache miss")

// Store is the byte-level backend a Memo writes through
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Recorder is told about every lookup
type Recorder interface {
	CacheResult(hit bool)
}

// Memo memoizes query results. The store is read-only between reloads, so
// entries are keyed by a refresh epoch instead of being invalidated one by
// one. A nil *Memo calls straight through to the loader.
type Memo struct {
	store    Store
	ttl      time.Duration
	epoch    string
	logger   *slog.Logger
	recorder Recorder
}

// MemoOption configures a Memo
type MemoOption func(*Memo)

// WithTTL sets how long entries live. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) MemoOption {
	return func(m *Memo) { m.ttl = ttl }
}

// WithEpoch sets the refresh epoch folded into every key
func WithEpoch(epoch string) MemoOption {
	return func(m *Memo) {
		if epoch != "" {
			m.epoch = epoch
		}
	}
}

// WithLogger sets the logger for store failures
func WithLogger(logger *slog.Logger) MemoOption {
	return func(m *Memo) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRecorder reports hits and misses
func WithRecorder(r Recorder) MemoOption {
	return func(m *Memo) { m.recorder = r }
}

// NewMemo creates a memoizer over store
func NewMemo(store Store, opts ...MemoOption) *Memo {
	m := &Memo{
		store:  store,
		ttl:    10 * time.Minute,
		epoch:  "default",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key builds "courtside:<epoch>:<parts...>" with every part query-escaped,
// so a part holding ':' or a glob character stays one segment.
func (m *Memo) Key(parts ...string) string {
	epoch := "default"
	if m != nil {
		epoch = m.epoch
	}
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, KeyPrefix, url.QueryEscape(epoch))
	for _, p := range parts {
		escaped = append(escaped, url.QueryEscape(p))
	}
	return strings.Join(escaped, ":")
}

// Prefix is the key prefix of the current epoch
func (m *Memo) Prefix() string {
	return m.Key() + ":"
}

// Remember returns the memoized value under key, or loads, stores and returns
// it. Store failures degrade to calling load; load errors are never cached.
func Remember[T any](ctx context.Context, m *Memo, key string, load func(context.Context) (T, error)) (T, error) {
	if m == nil || m.store == nil {
		return load(ctx)
	}

	raw, err := m.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			m.record(true)
			return v, nil
		}
		m.logger.Warn("discarding undecodable cache entry", "key", key)
	case errors.Is(err, ErrMiss):
	default:
		m.logger.Warn("cache read failed", "key", key, "error", err)
	}
	m.record(false)

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	raw, err = json.Marshal(v)
	if err != nil {
		m.logger.Warn("cache encode failed", "key", key, "error", err)
		return v, nil
	}
	if err := m.store.Set(ctx, key, raw, m.ttl); err != nil {
		m.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

func (m *Memo) record(hit bool) {
	if m.recorder != nil {
		m.recorder.CacheResult(hit)
	}
}
