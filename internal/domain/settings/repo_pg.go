package settings

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type settingsRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &settingsRepoPG{pool: pool}
}

func (r *settingsRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *settingsRepoPG) Get(ctx context.Context) (*Settings, error) {
	var s Settings
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT default_region, default_district, idle_timeout_minutes, updated_by, updated_at
		FROM settings WHERE id = 1`,
	).Scan(&s.DefaultRegion, &s.DefaultDistrict, &s.IdleTimeoutMinutes, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update upserts the row so a schema whose seed insert was skipped still
// ends up with settings.
func (r *settingsRepoPG) Update(ctx context.Context, s *Settings) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO settings (id, default_region, default_district, idle_timeout_minutes, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			default_region=EXCLUDED.default_region, default_district=EXCLUDED.default_district,
			idle_timeout_minutes=EXCLUDED.idle_timeout_minutes, updated_by=EXCLUDED.updated_by,
			updated_at=EXCLUDED.updated_at
		RETURNING updated_at`,
		s.DefaultRegion, s.DefaultDistrict, s.IdleTimeoutMinutes, s.UpdatedBy,
	).Scan(&s.UpdatedAt)
}
