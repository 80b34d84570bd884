package store

import (
	"log/slog"
	"time"
)

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used for failure logging. A nil logger is
// ignored. Without this option the store logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithKeyPrefix prepends prefix to every key before it reaches the
// backend. Callers continue to use unprefixed keys.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithDefaultTTL sets the expiry used by SetBytes, SetString and SetInt.
// Zero, the default, stores values without expiry.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}
