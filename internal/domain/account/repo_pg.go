package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type accountRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &accountRepoPG{pool: pool}
}

func (r *accountRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const accountCols = `id, username, password_hash, full_name, email, phone, user_type, active,
	region, district, subdistrict, community, last_login_at, created_at, updated_at`

func (r *accountRepoPG) scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FullName, &a.Email, &a.Phone, &a.UserType, &a.Active,
		&a.Region, &a.District, &a.Subdistrict, &a.Community, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO accounts (id, username, password_hash, full_name, email, phone, user_type, active,
			region, district, subdistrict, community)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		a.ID, a.Username, a.PasswordHash, a.FullName, a.Email, a.Phone, a.UserType, a.Active,
		a.Region, a.District, a.Subdistrict, a.Community,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *accountRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM accounts WHERE id = $1`, id))
}

func (r *accountRepoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return r.scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM accounts WHERE username = $1`, username))
}

func (r *accountRepoPG) Update(ctx context.Context, a *Account) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE accounts SET full_name=$2, email=$3, phone=$4, user_type=$5, active=$6,
			region=$7, district=$8, subdistrict=$9, community=$10, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.FullName, a.Email, a.Phone, a.UserType, a.Active,
		a.Region, a.District, a.Subdistrict, a.Community,
	).Scan(&a.UpdatedAt)
}

func (r *accountRepoPG) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE accounts SET password_hash=$2, updated_at=NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepoPG) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE accounts SET last_login_at=$2 WHERE id = $1`, id, at)
	return err
}

func (r *accountRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Account, int, error) {
	q := db.NewListQuery("accounts", accountCols).
		Eq("user_type", f.UserType).
		Search(f.Search, "username", "full_name").
		OrderBy("username")
	if f.Active != nil {
		q.Where("active = ?", *f.Active)
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
	var items []*Account
	for rows.Next() {
		a, err := r.scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
