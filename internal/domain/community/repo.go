package community

import (
	"context"

	"github.com/google/uuid"

	"github.com/mch/mch/pkg/geo"
)

type Repository interface {
	Create(ctx context.Context, c *Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*Community, error)
	Update(ctx context.Context, c *Community) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*Community, error)
	// Import inserts records, skipping chains that already exist, and
	// returns how many rows were added.
	Import(ctx context.Context, records []geo.CommunityRecord) (int, error)
}
