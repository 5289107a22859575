package feedback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/validate"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Submit(ctx context.Context, f *Feedback) error {
	normalize(f)
	if err := validate.Struct(f); err != nil {
		return err
	}
	f.AccountID = nil
	if id, err := uuid.Parse(auth.AccountIDFromContext(ctx)); err == nil {
		f.AccountID = &id
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	s.logger.Info().
		Str("feedback_id", f.ID.String()).
		Str("category", f.Category).
		Msg("feedback received")
	return nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Feedback, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
