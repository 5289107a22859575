package referral

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	// SetStatus moves a referral from one status to another. It returns
	// pgx.ErrNoRows when the referral is missing or no longer in from.
	SetStatus(ctx context.Context, id uuid.UUID, from, to string) (*Referral, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Referral, int, error)
}
