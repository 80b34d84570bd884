// Package store is the backend-agnostic facade of the StricklySoft store
// client. It reads and writes bytes, text and integers through any
// [Backend] and reports every failure as a [*sserr.Error]:
//
//   - backend failures arrive from the Redis and PostgreSQL clients
//     already collapsed into the generic kind and pass through unchanged;
//   - values that are not valid UTF-8 fail [Store.GetString] and
//     [Store.GetInt] with the TextDecode kind;
//   - text that is not a base-10 int64 fails [Store.GetInt] with the
//     IntParse kind, whose message is exactly the strconv message.
//
// A missing key is not an error: the getters report it through their
// found result.
//
//	st := store.New(redisClient, store.WithKeyPrefix("svc:"))
//	n, found, err := st.GetInt(ctx, "counter")
//	switch {
//	case sserr.IsIntParse(err):
//	    // stored value is not a number
//	case err != nil:
//	    return err
//	case !found:
//	    n = 0
//	}
package store

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-store/pkg/errors"
	"github.com/StricklySoft/stricklysoft-store/pkg/textconv"
)

// Backend is a key/value store. Get reports a missing key with found ==
// false and a nil error. Implementations should return [*sserr.Error]
// values; any other error is converted with [sserr.From].
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Health(ctx context.Context) error
	Close() error
}

// EmptyKeyMessage is the description of the error returned for an empty
// key.
const EmptyKeyMessage = "key must not be empty"

// Store reads and writes typed values through a [Backend]. It is safe for
// concurrent use when the backend is.
type Store struct {
	backend    Backend
	logger     *slog.Logger
	prefix     string
	defaultTTL time.Duration
}

// New returns a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key for key, with the configured prefix.
func (s *Store) Key(key string) string {
	return s.prefix + key
}

// GetBytes returns the raw value at key.
func (s *Store) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, s.fail(ctx, "GetBytes", key, sserr.Generic(EmptyKeyMessage))
	}
	value, found, err := s.backend.Get(ctx, s.Key(key))
	if err != nil {
		return nil, false, s.fail(ctx, "GetBytes", key, sserr.From(err))
	}
	return value, found, nil
}

// GetString returns the value at key as text. A value that is not valid
// UTF-8 fails with the TextDecode kind.
func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	value, found, err := s.getText(ctx, "GetString", key)
	if err != nil || !found {
		return "", false, err
	}
	return value, true, nil
}

// GetInt returns the value at key parsed with strconv.ParseInt(s, 10, 64).
// Whitespace is not trimmed. Text that does not parse fails with the
// IntParse kind.
func (s *Store) GetInt(ctx context.Context, key string) (int64, bool, error) {
	text, found, err := s.getText(ctx, "GetInt", key)
	if err != nil || !found {
		return 0, false, err
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false, s.fail(ctx, "GetInt", key, sserr.From(err))
	}
	return n, true, nil
}

func (s *Store) getText(ctx context.Context, op, key string) (string, bool, error) {
	if key == "" {
		return "", false, s.fail(ctx, op, key, sserr.Generic(EmptyKeyMessage))
	}
	raw, found, err := s.backend.Get(ctx, s.Key(key))
	if err != nil {
		return "", false, s.fail(ctx, op, key, sserr.From(err))
	}
	if !found {
		return "", false, nil
	}
	text, err := textconv.Decode(raw)
	if err != nil {
		return "", false, s.fail(ctx, op, key, sserr.From(err))
	}
	return text, true, nil
}

// SetBytes stores value at key with the default TTL.
func (s *Store) SetBytes(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, "SetBytes", key, value, s.defaultTTL)
}

// SetString stores value at key with the default TTL.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.set(ctx, "SetString", key, []byte(value), s.defaultTTL)
}

// SetInt stores n at key in base-10 text form with the default TTL, so it
// can be read back with [Store.GetInt].
func (s *Store) SetInt(ctx context.Context, key string, n int64) error {
	return s.set(ctx, "SetInt", key, strconv.AppendInt(nil, n, 10), s.defaultTTL)
}

// SetWithTTL stores value at key with an explicit ttl. A ttl of zero or
// less stores the value without expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.set(ctx, "SetWithTTL", key, value, ttl)
}

func (s *Store) set(ctx context.Context, op, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return s.fail(ctx, op, key, sserr.Generic(EmptyKeyMessage))
	}
	if err := s.backend.Set(ctx, s.Key(key), value, ttl); err != nil {
		return s.fail(ctx, op, key, sserr.From(err))
	}
	return nil
}

// Delete removes keys and returns how many existed. With no keys it
// returns 0 without contacting the backend.
func (s *Store) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		if k == "" {
			return 0, s.fail(ctx, "Delete", k, sserr.Generic(EmptyKeyMessage))
		}
		full[i] = s.Key(k)
	}
	n, err := s.backend.Del(ctx, full...)
	if err != nil {
		return 0, s.fail(ctx, "Delete", keys[0], sserr.From(err))
	}
	return n, nil
}

// Health checks that the backend is reachable.
func (s *Store) Health(ctx context.Context) error {
	if err := s.backend.Health(ctx); err != nil {
		return s.fail(ctx, "Health", "", sserr.From(err))
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	if err := s.backend.Close(); err != nil {
		return s.fail(context.Background(), "Close", "", sserr.From(err))
	}
	return nil
}

// fail logs err and returns it as an error interface holding a non-nil
// *sserr.Error.
func (s *Store) fail(ctx context.Context, op, key string, err *sserr.Error) error {
	s.logger.DebugContext(ctx, "store: operation failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("kind", err.Kind().String()),
		slog.Any("error", err),
	)
	return err
}
