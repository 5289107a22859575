package kit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/validate"
)

// clockSkew is how far in the future a distribution time may be.
const clockSkew = 5 * time.Minute

type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientChecker
	now      func() time.Time
}

func NewService(repo Repository, patients PatientChecker) *Service {
	return &Service{repo: repo, patients: patients, now: time.Now}
}

func (s *Service) Create(ctx context.Context, l *DistroLog) error {
	if l.PatientID == uuid.Nil {
		return apierr.Invalid("patient_id is required")
	}
	l.KitType = strings.ToLower(strings.TrimSpace(l.KitType))
	if err := validate.Struct(l); err != nil {
		return err
	}
	now := s.now()
	if l.DistributedAt.IsZero() {
		l.DistributedAt = now
	}
	if l.DistributedAt.After(now.Add(clockSkew)) {
		return apierr.Invalid("distributed_at cannot be in the future")
	}
	ok, err := s.patients.Exists(ctx, l.PatientID)
	if err != nil {
		return fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return apierr.NotFound("patient")
	}
	l.DistributedBy = nil
	if id, err := uuid.Parse(auth.AccountIDFromContext(ctx)); err == nil {
		l.DistributedBy = &id
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return fmt.Errorf("create kit log: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DistroLog, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*DistroLog, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
