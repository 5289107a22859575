package report

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// Inactive accounts are listed only when they captured something.
const dataCaptureSQL = `
	WITH p AS (
		SELECT created_by AS id, COUNT(*) AS n FROM patients
		WHERE created_at >= $1 AND created_at < $2 GROUP BY created_by
	), r AS (
		SELECT registered_by AS id, COUNT(*) AS n FROM antenatal_registrations
		WHERE created_at >= $1 AND created_at < $2 GROUP BY registered_by
	), v AS (
		SELECT recorded_by AS id, COUNT(*) AS n FROM antenatal_visits
		WHERE created_at >= $1 AND created_at < $2 GROUP BY recorded_by
	), k AS (
		SELECT distributed_by AS id, COUNT(*) AS n FROM kit_distro_logs
		WHERE created_at >= $1 AND created_at < $2 GROUP BY distributed_by
	)
	SELECT a.id, a.username, a.full_name, a.user_type,
		COALESCE(p.n, 0), COALESCE(r.n, 0), COALESCE(v.n, 0), COALESCE(k.n, 0)
	FROM accounts a
	LEFT JOIN p ON p.id = a.id
	LEFT JOIN r ON r.id = a.id
	LEFT JOIN v ON v.id = a.id
	LEFT JOIN k ON k.id = a.id
	WHERE a.active OR COALESCE(p.n, 0) + COALESCE(r.n, 0) + COALESCE(v.n, 0) + COALESCE(k.n, 0) > 0
	ORDER BY a.username`

func (r *reportRepoPG) DataCapture(ctx context.Context, from, until time.Time) ([]Row, error) {
	rows, err := r.conn(ctx).Query(ctx, dataCaptureSQL, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.AccountID, &row.Username, &row.FullName, &row.UserType,
			&row.Patients, &row.Registrations, &row.Visits, &row.KitLogs); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
