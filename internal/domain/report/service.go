package report

import (
	"context"
	"fmt"
	"time"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// DataCapture reports per-account activity between q.From and q.To,
// both days included.
func (s *Service) DataCapture(ctx context.Context, q Query) (*DataCapture, error) {
	if err := validate.Struct(&q); err != nil {
		return nil, err
	}
	from, _ := time.Parse(validate.DateLayout, q.From)
	to, _ := time.Parse(validate.DateLayout, q.To)
	if to.Before(from) {
		return nil, apierr.Invalid("to must not be before from")
	}
	if to.Sub(from) >= MaxRangeDays*24*time.Hour {
		return nil, apierr.Invalid("report window may not exceed %d days", MaxRangeDays)
	}
	rows, err := s.repo.DataCapture(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("data capture report: %w", err)
	}
	if rows == nil {
		rows = []Row{}
	}
	return &DataCapture{From: from, To: to, Rows: rows}, nil
}
