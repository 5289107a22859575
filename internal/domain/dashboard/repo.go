package dashboard

import (
	"context"
	"time"
)

type Repository interface {
	// Aggregates counts everything on the dashboard. Upcoming visits are
	// those with a next visit date in [from, until].
	Aggregates(ctx context.Context, from, until time.Time) (*Aggregates, error)
}
