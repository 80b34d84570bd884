// Package postgres provides the PostgreSQL backend for the StricklySoft
// store client. Values live in a single key/value table:
//
//	CREATE TABLE kv_store (
//	    key        TEXT PRIMARY KEY,
//	    value      BYTEA NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
//
// Rows whose expires_at has passed are invisible to [Client.Get] and are
// removed by [Client.Purge]. A NULL expires_at never expires.
//
// # Error Conversion
//
// Every pgx failure is collapsed into the generic store error kind by a
// single adapter: the driver's message survives as "Store error: "
// followed by the message, the driver error value does not. Callers that
// need SQLSTATE codes must not rely on this package's errors.
//
// # Configuration
//
//	cfg := postgres.DefaultConfig()
//	cfg.Password = postgres.Secret(os.Getenv("POSTGRES_PASSWORD"))
//	client, err := postgres.NewClient(ctx, *cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	if err := client.EnsureSchema(ctx); err != nil {
//	    return err
//	}
//
// For tests, inject a pgxmock pool with [NewFromPool].
//
// # OpenTelemetry Tracing
//
// Every operation creates a client span named "postgres.<Op>" with the
// db.system, db.name and db.statement attributes. Statements are
// truncated to 100 characters.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	sserr "github.com/StricklySoft/stricklysoft-store/pkg/errors"
)

// tracerName is the OpenTelemetry instrumentation scope name for this package.
const tracerName = "github.com/StricklySoft/stricklysoft-store/pkg/clients/postgres"

// Pool is the subset of pgxpool the Client uses. It is satisfied by
// [*pgxpool.Pool] and by pgxmock pools.
type Pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

var _ Pool = (*pgxpool.Pool)(nil)

// Client is a traced PostgreSQL key/value backend. Every error it returns
// is a [*sserr.Error] of kind [sserr.KindGeneric].
//
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	pool         Pool
	config       *Config
	tracer       trace.Tracer
	databaseName string
	queries      queries
}

// queries holds the statements for one table, built once with the table
// name quoted.
type queries struct {
	schema string
	get    string
	set    string
	del    string
	purge  string
}

func newQueries(table string) queries {
	parts, err := tableIdentifier(table)
	if err != nil {
		// Unvalidated configs from NewFromPool fall back to the default.
		parts = []string{DefaultTable}
	}
	t := pgx.Identifier(parts).Sanitize()
	return queries{
		schema: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	expires_at TIMESTAMPTZ
)`, t),
		get: fmt.Sprintf(`SELECT value FROM %s WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`, t),
		set: fmt.Sprintf(`INSERT INTO %s (key, value, expires_at) VALUES ($1, $2, $3) `+
			`ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`, t),
		del:   fmt.Sprintf(`DELETE FROM %s WHERE key = ANY($1)`, t),
		purge: fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at <= now()`, t),
	}
}

// NewClient validates cfg, opens a pgx connection pool and verifies
// connectivity with a ping. It does not create the table; call
// [Client.EnsureSchema] for that. The caller must call [Client.Close].
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, sserr.Generic(err.Error())
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, sserr.Genericf("postgres: failed to parse connection string: %v", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapError(err)
	}

	dbName := cfg.Database
	if cfg.URI != "" {
		if u, parseErr := url.Parse(cfg.URI); parseErr == nil {
			dbName = strings.TrimPrefix(u.Path, "/")
		}
	}

	return &Client{
		pool:         pool,
		config:       &cfg,
		tracer:       otel.Tracer(tracerName),
		databaseName: dbName,
		queries:      newQueries(cfg.Table),
	}, nil
}

// NewFromPool creates a Client over an existing [Pool]. cfg is not
// validated; nil is replaced by a zero Config, which uses [DefaultTable].
func NewFromPool(pool Pool, cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Client{
		pool:         pool,
		config:       cfg,
		tracer:       otel.Tracer(tracerName),
		databaseName: cfg.Database,
		queries:      newQueries(cfg.Table),
	}
}

// EnsureSchema creates the key/value table if it does not exist.
func (c *Client) EnsureSchema(ctx context.Context) error {
	return c.exec(ctx, "EnsureSchema", c.queries.schema)
}

// Get returns the value stored at key. Missing and expired keys yield
// found == false and a nil error.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := c.startSpan(ctx, "Get", c.queries.get)

	var value []byte
	err := c.pool.QueryRow(ctx, c.queries.get, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		finishSpan(span, nil)
		return nil, false, nil
	}
	finishSpan(span, err)
	if err != nil {
		return nil, false, wrapError(err)
	}
	return value, true, nil
}

// Set upserts value at key. A ttl of zero or less stores the row without
// an expiry.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	if value == nil {
		value = []byte{}
	}
	return c.exec(ctx, "Set", c.queries.set, key, value, expiresAt)
}

// Del removes keys and returns how many rows were deleted. Expired rows
// that have not been purged yet are counted.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.execCount(ctx, "Del", c.queries.del, keys)
}

// Purge deletes every expired row and returns how many were removed.
func (c *Client) Purge(ctx context.Context) (int64, error) {
	return c.execCount(ctx, "Purge", c.queries.purge)
}

// Health pings the database, applying [DefaultHealthTimeout] when ctx has
// no deadline.
func (c *Client) Health(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "Health", "SELECT 1")

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultHealthTimeout)
		defer cancel()
	}

	err := c.pool.Ping(ctx)
	finishSpan(span, err)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// Close releases the connection pool. It always returns nil and is safe
// to call more than once.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// Pool returns the underlying [Pool]. Close it through [Client.Close].
func (c *Client) Pool() Pool {
	return c.pool
}

func (c *Client) exec(ctx context.Context, op, sql string, args ...any) error {
	_, err := c.execCount(ctx, op, sql, args...)
	return err
}

func (c *Client) execCount(ctx context.Context, op, sql string, args ...any) (int64, error) {
	ctx, span := c.startSpan(ctx, op, sql)
	tag, err := c.pool.Exec(ctx, sql, args...)
	finishSpan(span, err)
	if err != nil {
		return 0, wrapError(err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) startSpan(ctx context.Context, operationName, sql string) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "postgres."+operationName,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.name", c.databaseName),
		attribute.String("db.statement", truncateSQL(sql)),
	)
	return ctx, span
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// wrapError is the only place pgx errors become store errors. Timeouts,
// SQLSTATE codes and the driver error itself are not preserved.
func wrapError(err error) *sserr.Error {
	return sserr.FromBackend(err)
}
