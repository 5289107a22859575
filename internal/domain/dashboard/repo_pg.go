package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type dashboardRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &dashboardRepoPG{pool: pool}
}

func (r *dashboardRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *dashboardRepoPG) Aggregates(ctx context.Context, from, until time.Time) (*Aggregates, error) {
	b := &pgx.Batch{}
	b.Queue(`
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM antenatal_registrations),
			(SELECT COUNT(*) FROM antenatal_visits),
			(SELECT COALESCE(SUM(quantity), 0) FROM kit_distro_logs),
			(SELECT COUNT(*) FROM referrals),
			(SELECT COUNT(*) FROM antenatal_visits WHERE next_visit_date BETWEEN $1 AND $2)`,
		from, until)
	b.Queue(`SELECT region, COUNT(*) FROM patients GROUP BY region ORDER BY COUNT(*) DESC, region`)
	b.Queue(`SELECT kit_type, SUM(quantity) FROM kit_distro_logs GROUP BY kit_type`)

	br := r.conn(ctx).SendBatch(ctx, b)
	defer br.Close()

	var a Aggregates
	if err := br.QueryRow().Scan(&a.Patients, &a.Registrations, &a.Visits, &a.KitsDistributed,
		&a.Referrals, &a.UpcomingVisits); err != nil {
		return nil, err
	}

	rows, err := br.Query()
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var rc RegionCount
		if err := rows.Scan(&rc.Region, &rc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		a.PatientsByRegion = append(a.PatientsByRegion, rc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = br.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kc KitCount
		if err := rows.Scan(&kc.KitType, &kc.Quantity); err != nil {
			return nil, err
		}
		a.KitsByType = append(a.KitsByType, kc)
	}
	return &a, rows.Err()
}
