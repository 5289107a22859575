package kit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type kitRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &kitRepoPG{pool: pool}
}

func (r *kitRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const kitCols = `id, patient_id, kit_type, quantity, distributed_at, distributed_by, notes, created_at`

func (r *kitRepoPG) scanLog(row pgx.Row) (*DistroLog, error) {
	var l DistroLog
	err := row.Scan(&l.ID, &l.PatientID, &l.KitType, &l.Quantity, &l.DistributedAt, &l.DistributedBy, &l.Notes, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *kitRepoPG) Create(ctx context.Context, l *DistroLog) error {
	l.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO kit_distro_logs (id, patient_id, kit_type, quantity, distributed_at, distributed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		l.ID, l.PatientID, l.KitType, l.Quantity, l.DistributedAt, l.DistributedBy, l.Notes,
	).Scan(&l.CreatedAt)
}

func (r *kitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DistroLog, error) {
	return r.scanLog(r.conn(ctx).QueryRow(ctx, `SELECT `+kitCols+` FROM kit_distro_logs WHERE id = $1`, id))
}

func (r *kitRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM kit_distro_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *kitRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*DistroLog, int, error) {
	q := db.NewListQuery("kit_distro_logs", kitCols).
		Eq("kit_type", f.KitType).
		OrderBy("distributed_at DESC, id")
	if f.PatientID != nil {
		q.Where("patient_id = ?", *f.PatientID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DistroLog
	for rows.Next() {
		l, err := r.scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}
