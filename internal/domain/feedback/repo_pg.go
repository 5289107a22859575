package feedback

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type feedbackRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &feedbackRepoPG{pool: pool}
}

func (r *feedbackRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const feedbackCols = `id, account_id, subject, message, category, created_at`

func (r *feedbackRepoPG) scanFeedback(row pgx.Row) (*Feedback, error) {
	var f Feedback
	if err := row.Scan(&f.ID, &f.AccountID, &f.Subject, &f.Message, &f.Category, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *feedbackRepoPG) Create(ctx context.Context, f *Feedback) error {
	f.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO feedback (id, account_id, subject, message, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		f.ID, f.AccountID, f.Subject, f.Message, f.Category,
	).Scan(&f.CreatedAt)
}

func (r *feedbackRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Feedback, int, error) {
	q := db.NewListQuery("feedback", feedbackCols).
		Eq("category", f.Category).
		OrderBy("created_at DESC, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Feedback
	for rows.Next() {
		f, err := r.scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, rows.Err()
}
