package contact

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

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

// check validates c. A contact's location is optional and may stop at any
// tier, but what is given must be a consistent chain.
func (s *Service) check(ctx context.Context, c *Contact) error {
	normalize(c)
	if err := validate.Struct(c); err != nil {
		return err
	}
	if loc := c.Location(); !loc.IsEmpty() {
		return s.locations.ValidateLocation(ctx, loc, false)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, c *Contact) error {
	if err := s.check(ctx, c); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Contact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Contact) error {
	if err := s.check(ctx, c); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Contact, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
