package settings

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

const DefaultIdleTimeoutMinutes = 30

type LocationValidator interface {
	ValidateLocation(ctx context.Context, sel geo.Selection, complete bool) error
}

type Service struct {
	repo      Repository
	locations LocationValidator
}

func NewService(repo Repository, locations LocationValidator) *Service {
	return &Service{repo: repo, locations: locations}
}

// Get returns the current settings, or the defaults if none were saved.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	st, err := s.repo.Get(ctx)
	if db.IsNoRows(err) {
		return &Settings{IdleTimeoutMinutes: DefaultIdleTimeoutMinutes}, nil
	}
	return st, err
}

func (s *Service) Update(ctx context.Context, st *Settings) error {
	normalize(st)
	if err := validate.Struct(st); err != nil {
		return err
	}
	if st.DefaultDistrict != nil && st.DefaultRegion == nil {
		return apierr.Invalid("default_district needs a default_region")
	}
	if loc := st.Location(); !loc.IsEmpty() {
		if err := s.locations.ValidateLocation(ctx, loc, false); err != nil {
			return err
		}
	}
	st.UpdatedBy = nil
	if id, err := uuid.Parse(auth.AccountIDFromContext(ctx)); err == nil {
		st.UpdatedBy = &id
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
