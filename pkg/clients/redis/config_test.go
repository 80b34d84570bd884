package redis

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret_Redaction(t *testing.T) {
	t.Parallel()
	s := Secret("hunter2")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
	assert.Equal(t, "hunter2", s.Value())

	text, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]", string(text))
}

func TestConfig_PasswordNotSerialized(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Password = Secret("hunter2")

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.Equal(t, DefaultMinIdleConns, cfg.MinIdleConns)
	assert.Equal(t, DefaultDialTimeout, cfg.DialTimeout)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_AppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
}

func TestConfig_Validate_SmallPoolCapsMinIdle(t *testing.T) {
	t.Parallel()
	cfg := &Config{PoolSize: 1}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.PoolSize)
	assert.Equal(t, 1, cfg.MinIdleConns)

	cfg = &Config{PoolSize: 5}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultMinIdleConns, cfg.MinIdleConns)
}

func TestConfig_Validate_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"port too high", Config{Port: 65536}, "port must be between"},
		{"negative port", Config{Port: -1}, "port must be between"},
		{"negative db", Config{DB: -1}, "db must be >= 0"},
		{"negative pool", Config{PoolSize: -1}, "pool_size must be >= 1"},
		{"negative idle", Config{MinIdleConns: -1}, "min_idle_conns must be >= 0"},
		{"pool below idle", Config{PoolSize: 2, MinIdleConns: 5}, "pool_size (2) must be >= min_idle_conns (5)"},
		{"negative timeout", Config{ReadTimeout: -time.Second}, "timeouts must not be negative"},
		{"bad scheme", Config{URI: "http://localhost:6379"}, "scheme must be redis://"},
		{"unparseable uri", Config{URI: "redis://[::1"}, "URI is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := tt.cfg
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate_URI(t *testing.T) {
	t.Parallel()
	for _, uri := range []string{"redis://localhost:6379/0", "rediss://:pw@cache.internal:6380/2"} {
		cfg := &Config{URI: uri}
		assert.NoError(t, cfg.Validate(), uri)
	}
}

func TestConfig_Options_Structured(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Host = "cache.internal"
	cfg.Port = 6380
	cfg.DB = 4
	cfg.Password = Secret("pw")
	cfg.TLSEnabled = true
	require.NoError(t, cfg.Validate())

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 4, opts.DB)
	assert.Equal(t, "pw", opts.Password)
	require.NotNil(t, opts.TLSConfig)
}

func TestConfig_Options_URI(t *testing.T) {
	t.Parallel()
	cfg := &Config{URI: "redis://:pw@cache.internal:6380/3", PoolSize: 7, MinIdleConns: 1}
	require.NoError(t, cfg.Validate())

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 1, opts.MinIdleConns)
}

func TestTruncateStatement(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "GET k", truncateStatement("GET k"))

	exact := strings.Repeat("a", maxStatementTruncateLen)
	assert.Equal(t, exact, truncateStatement(exact))

	long := strings.Repeat("é", maxStatementTruncateLen+5)
	got := truncateStatement(long)
	assert.Equal(t, strings.Repeat("é", maxStatementTruncateLen)+"...", got)
}
