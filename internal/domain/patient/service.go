package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

// LocationValidator checks an address against the community list.
type LocationValidator interface {
	ValidateLocation(ctx context.Context, sel geo.Selection, complete bool) error
}

type Service struct {
	repo      Repository
	locations LocationValidator
	now       func() time.Time
}

func NewService(repo Repository, locations LocationValidator) *Service {
	return &Service{repo: repo, locations: locations, now: time.Now}
}

func (s *Service) check(ctx context.Context, p *Patient) error {
	normalize(p)
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(s.now()) {
		return apierr.Invalid("date_of_birth cannot be in the future")
	}
	return s.locations.ValidateLocation(ctx, p.Location(), true)
}

func conflict(err error) error {
	if db.IsUniqueViolation(err, "patients_national_id_key") {
		return apierr.Wrap(apierr.KindConflict, "a patient with this national id already exists", err)
	}
	return err
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.check(ctx, p); err != nil {
		return err
	}
	p.CreatedBy = nil
	if id, err := uuid.Parse(auth.AccountIDFromContext(ctx)); err == nil {
		p.CreatedBy = &id
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create patient: %w", conflict(err))
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.check(ctx, p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update patient: %w", conflict(err))
	}
	return nil
}

// Delete removes a patient together with their ANC, kit and referral records.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// Exists reports whether a patient with id is on file.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case db.IsNoRows(err):
		return false, nil
	}
	return false, err
}
