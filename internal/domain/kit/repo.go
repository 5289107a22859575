package kit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, l *DistroLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*DistroLog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*DistroLog, int, error)
}
