package db

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthTimeout = 3 * time.Second

type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Health is the body of the database health endpoint. MigrationVersion is
// the highest version recorded in the schema.
type Health struct {
	Status           string    `json:"status"`
	Schema           string    `json:"schema"`
	MigrationVersion int       `json:"migration_version"`
	Latency          string    `json:"latency"`
	Error            string    `json:"error,omitempty"`
	Pool             PoolStats `json:"pool"`
}

func poolStats(pool *pgxpool.Pool) PoolStats {
	s := pool.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
	}
}

// CheckHealth pings the database and reads the schema's migration version.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool, schema string) Health {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	h := Health{Status: "healthy", Schema: schema, Pool: poolStats(pool)}
	start := time.Now()
	err := pool.Ping(ctx)
	h.Latency = time.Since(start).String()
	if err == nil {
		err = pool.QueryRow(ctx, fmt.Sprintf(
			`SELECT COALESCE(MAX(version), 0) FROM %s.schema_migrations`, schema)).Scan(&h.MigrationVersion)
	}
	if err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
	}
	return h
}

// HealthHandler serves CheckHealth, with 503 when the database is unhealthy.
func HealthHandler(pool *pgxpool.Pool, schema string) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := CheckHealth(c.Request().Context(), pool, schema)
		if h.Status != "healthy" {
			return c.JSON(http.StatusServiceUnavailable, h)
		}
		return c.JSON(http.StatusOK, h)
	}
}
