package db

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	DBConnKey contextKey = "db_conn"
	DBTxKey   contextKey = "db_tx"
)

var schemaPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidSchema reports whether name is safe to interpolate as a schema.
func ValidSchema(name string) bool {
	return schemaPattern.MatchString(name)
}

// SchemaMiddleware pins a pooled connection to the request with search_path
// set to schema. Repositories pick it up through ConnFromContext.
func SchemaMiddleware(pool *pgxpool.Pool, schema string) echo.MiddlewareFunc {
	setPath := fmt.Sprintf("SET search_path TO %s, public", schema)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			if _, err := conn.Exec(ctx, setPath); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "schema resolution failed")
			}

			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("db", conn)

			return next(c)
		}
	}
}

// ConnFromContext retrieves the request-scoped database connection from context.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// EnsureSchema creates schema if needed and runs the migrations in fsys
// against it. A nil fsys only creates the schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, schema string, fsys fs.FS, opts ...MigratorOption) (int, error) {
	if !ValidSchema(schema) {
		return 0, fmt.Errorf("invalid schema name: %s", schema)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return 0, fmt.Errorf("create schema %s: %w", schema, err)
	}

	if fsys == nil {
		return 0, nil
	}
	n, err := NewMigrator(pool, fsys, opts...).Up(ctx, schema)
	if err != nil {
		return n, fmt.Errorf("run migrations for %s: %w", schema, err)
	}
	return n, nil
}

// BindSchema acquires a connection with search_path set to schema and
// returns a context carrying it, the way SchemaMiddleware does for
// requests. Call release when done.
func BindSchema(ctx context.Context, pool *pgxpool.Pool, schema string) (context.Context, func(), error) {
	if !ValidSchema(schema) {
		return ctx, func() {}, fmt.Errorf("invalid schema name: %s", schema)
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return ctx, func() {}, fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema)); err != nil {
		conn.Release()
		return ctx, func() {}, fmt.Errorf("set search_path: %w", err)
	}
	return context.WithValue(ctx, DBConnKey, conn), conn.Release, nil
}
