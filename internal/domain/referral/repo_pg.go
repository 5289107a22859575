package referral

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type referralRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &referralRepoPG{pool: pool}
}

func (r *referralRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const referralCols = `id, patient_id, reason, urgency, status, region, district, subdistrict, community,
	facility, referred_by, referred_at, updated_at`

func (r *referralRepoPG) scanReferral(row pgx.Row) (*Referral, error) {
	var f Referral
	err := row.Scan(&f.ID, &f.PatientID, &f.Reason, &f.Urgency, &f.Status, &f.Region, &f.District, &f.Subdistrict,
		&f.Community, &f.Facility, &f.ReferredBy, &f.ReferredAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *referralRepoPG) Create(ctx context.Context, f *Referral) error {
	f.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO referrals (id, patient_id, reason, urgency, status, region, district, subdistrict, community,
			facility, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING referred_at, updated_at`,
		f.ID, f.PatientID, f.Reason, f.Urgency, f.Status, f.Region, f.District, f.Subdistrict, f.Community,
		f.Facility, f.ReferredBy,
	).Scan(&f.ReferredAt, &f.UpdatedAt)
}

func (r *referralRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return r.scanReferral(r.conn(ctx).QueryRow(ctx, `SELECT `+referralCols+` FROM referrals WHERE id = $1`, id))
}

func (r *referralRepoPG) SetStatus(ctx context.Context, id uuid.UUID, from, to string) (*Referral, error) {
	return r.scanReferral(r.conn(ctx).QueryRow(ctx, `
		UPDATE referrals SET status=$3, updated_at=NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+referralCols, id, from, to))
}

func (r *referralRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Referral, int, error) {
	q := db.NewListQuery("referrals", referralCols).
		Eq("status", f.Status).
		Eq("urgency", f.Urgency).
		OrderBy("referred_at DESC, id")
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
	var items []*Referral
	for rows.Next() {
		f, err := r.scanReferral(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, rows.Err()
}
