package referral

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

type LocationValidator interface {
	ValidateLocation(ctx context.Context, sel geo.Selection, complete bool) error
}

type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo      Repository
	patients  PatientChecker
	locations LocationValidator
}

func NewService(repo Repository, patients PatientChecker, locations LocationValidator) *Service {
	return &Service{repo: repo, patients: patients, locations: locations}
}

// Create files a new referral. It always starts out pending.
func (s *Service) Create(ctx context.Context, r *Referral) error {
	if r.PatientID == uuid.Nil {
		return apierr.Invalid("patient_id is required")
	}
	normalize(r)
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := s.locations.ValidateLocation(ctx, r.Location(), true); err != nil {
		return err
	}
	ok, err := s.patients.Exists(ctx, r.PatientID)
	if err != nil {
		return fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return apierr.NotFound("patient")
	}
	r.Status = StatusPending
	r.ReferredBy = nil
	if id, err := uuid.Parse(auth.AccountIDFromContext(ctx)); err == nil {
		r.ReferredBy = &id
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return fmt.Errorf("create referral: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Referral, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// ChangeStatus moves a referral along pending -> accepted -> completed.
// Pending and accepted referrals may also be cancelled.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, change *StatusChange) (*Referral, error) {
	if err := validate.Struct(change); err != nil {
		return nil, err
	}
	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMove(cur.Status, change.Status) {
		return nil, apierr.Invalid("referral cannot move from %s to %s", cur.Status, change.Status)
	}
	r, err := s.repo.SetStatus(ctx, id, cur.Status, change.Status)
	if db.IsNoRows(err) {
		return nil, apierr.Conflict("referral was changed by someone else; reload and try again")
	}
	return r, err
}
