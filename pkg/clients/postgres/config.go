package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// maxSQLTruncateLen bounds db.statement span attributes.
const maxSQLTruncateLen = 100

// maxIdentifierLen is PostgreSQL's NAMEDATALEN - 1.
const maxIdentifierLen = 63

const (
	// DefaultHost is the PostgreSQL host used when none is configured.
	DefaultHost = "localhost"

	// DefaultPort is the standard PostgreSQL port.
	DefaultPort = 5432

	// DefaultDatabase is the database holding the key/value table.
	DefaultDatabase = "stricklysoft"

	// DefaultUser is the role used when none is configured.
	DefaultUser = "postgres"

	// DefaultTable is the key/value table name.
	DefaultTable = "kv_store"

	// DefaultMaxConns is the maximum number of pooled connections.
	DefaultMaxConns int32 = 10

	// DefaultMinConns is the number of idle connections kept open.
	DefaultMinConns int32 = 2

	// DefaultConnectTimeout bounds connection establishment.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultHealthTimeout bounds [Client.Health] when the caller's
	// context has no deadline.
	DefaultHealthTimeout = 5 * time.Second
)

// SSLMode is a libpq sslmode value.
type SSLMode string

// Recognized sslmode values.
const (
	SSLModeDisable    SSLMode = "disable"
	SSLModeAllow      SSLMode = "allow"
	SSLModePrefer     SSLMode = "prefer"
	SSLModeRequire    SSLMode = "require"
	SSLModeVerifyCA   SSLMode = "verify-ca"
	SSLModeVerifyFull SSLMode = "verify-full"
)

func (m SSLMode) String() string { return string(m) }

// Valid reports whether m is one of the recognized sslmode values.
func (m SSLMode) Valid() bool {
	switch m {
	case SSLModeDisable, SSLModeAllow, SSLModePrefer,
		SSLModeRequire, SSLModeVerifyCA, SSLModeVerifyFull:
		return true
	}
	return false
}

// Secret holds a credential that redacts itself in logs and serialized
// configuration.
type Secret string

const redacted = "[REDACTED]"

func (s Secret) String() string   { return redacted }
func (s Secret) GoString() string { return redacted }

// Value returns the underlying credential.
func (s Secret) Value() string { return string(s) }

// MarshalText returns "[REDACTED]".
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Config holds the PostgreSQL connection settings and the name of the
// key/value table. When URI is set it takes precedence over the
// structured connection fields; Table and the pool settings always apply.
type Config struct {
	URI string `json:"uri,omitempty" yaml:"uri" env:"URI"`

	Host     string  `json:"host,omitempty" yaml:"host" env:"HOST" envDefault:"localhost"`
	Port     int     `json:"port,omitempty" yaml:"port" env:"PORT" envDefault:"5432"`
	Database string  `json:"database" yaml:"database" env:"DATABASE" envDefault:"stricklysoft"`
	User     string  `json:"user" yaml:"user" env:"USER" envDefault:"postgres"`
	Password Secret  `json:"-" yaml:"-" env:"PASSWORD"`
	SSLMode  SSLMode `json:"ssl_mode,omitempty" yaml:"ssl_mode" env:"SSLMODE"`

	// Table is the key/value table, optionally schema-qualified
	// ("cache.kv"). Each part must be a plain SQL identifier.
	Table string `json:"table,omitempty" yaml:"table" env:"TABLE"`

	MaxConns       int32         `json:"max_conns,omitempty" yaml:"max_conns" env:"MAX_CONNS"`
	MinConns       int32         `json:"min_conns,omitempty" yaml:"min_conns" env:"MIN_CONNS"`
	ConnectTimeout time.Duration `json:"connect_timeout,omitempty" yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

// DefaultConfig returns a Config for a local PostgreSQL with sslmode
// "prefer".
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Database:       DefaultDatabase,
		User:           DefaultUser,
		SSLMode:        SSLModePrefer,
		Table:          DefaultTable,
		MaxConns:       DefaultMaxConns,
		MinConns:       DefaultMinConns,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// Validate applies defaults to zero-valued fields and returns the first
// invalid setting found.
func (c *Config) Validate() error {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.MaxConns == 0 {
		c.MaxConns = DefaultMaxConns
	}
	if c.MinConns == 0 {
		c.MinConns = min(DefaultMinConns, c.MaxConns)
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}

	if _, err := tableIdentifier(c.Table); err != nil {
		return err
	}
	switch {
	case c.MaxConns < 1:
		return fmt.Errorf("postgres: config max_conns must be >= 1, got %d", c.MaxConns)
	case c.MinConns < 0:
		return fmt.Errorf("postgres: config min_conns must be >= 0, got %d", c.MinConns)
	case c.MaxConns < c.MinConns:
		return fmt.Errorf("postgres: config max_conns (%d) must be >= min_conns (%d)", c.MaxConns, c.MinConns)
	case c.ConnectTimeout < 0:
		return errors.New("postgres: config connect_timeout must not be negative")
	}

	if c.URI != "" {
		u, err := url.Parse(c.URI)
		if err != nil {
			return fmt.Errorf("postgres: config URI is invalid: %w", err)
		}
		if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			return fmt.Errorf("postgres: config URI scheme must be postgres:// or postgresql://, got %q", u.Scheme)
		}
		return nil
	}

	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.SSLMode == "" {
		c.SSLMode = SSLModePrefer
	}
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("postgres: config port must be between 1 and 65535, got %d", c.Port)
	case c.Database == "":
		return errors.New("postgres: config database must not be empty")
	case c.User == "":
		return errors.New("postgres: config user must not be empty")
	case !c.SSLMode.Valid():
		return fmt.Errorf("postgres: config ssl_mode %q is not valid", c.SSLMode)
	}
	return nil
}

// ConnectionString returns URI when set, otherwise a postgres:// URL
// built from the structured fields. The result contains the password in
// cleartext.
func (c *Config) ConnectionString() string {
	if c.URI != "" {
		return c.URI
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password.Value()),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", string(c.SSLMode))
	}
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// tableIdentifier splits a possibly schema-qualified table name and
// checks that every part is a plain identifier.
func tableIdentifier(table string) ([]string, error) {
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("postgres: config table %q has too many parts", table)
	}
	for _, p := range parts {
		if !isIdentifier(p) {
			return nil, fmt.Errorf("postgres: config table %q is not a valid identifier", table)
		}
	}
	return parts, nil
}

func isIdentifier(s string) bool {
	if s == "" || len(s) > maxIdentifierLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// truncateSQL shortens sql to maxSQLTruncateLen runes, marking the cut
// with "...".
func truncateSQL(sql string) string {
	if utf8.RuneCountInString(sql) <= maxSQLTruncateLen {
		return sql
	}
	return string([]rune(sql)[:maxSQLTruncateLen]) + "..."
}
