package report

import (
	"context"
	"time"
)

type Repository interface {
	// DataCapture counts records created by each account in [from, until).
	DataCapture(ctx context.Context, from, until time.Time) ([]Row, error)
}
