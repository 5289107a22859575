package antenatal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/anc"
)

// ErrRegistrationNotFound is returned when a patient or visit refers to an
// antenatal registration that does not exist.
var ErrRegistrationNotFound = &apierr.Error{Kind: apierr.KindNotFound, Msg: "antenatal registration not found"}

// PatientChecker reports whether a patient is on file.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	registrations RegistrationRepository
	visits        VisitRepository
	patients      PatientChecker
	now           func() time.Time
}

func NewService(registrations RegistrationRepository, visits VisitRepository, patients PatientChecker) *Service {
	return &Service{registrations: registrations, visits: visits, patients: patients, now: time.Now}
}

func actor(ctx context.Context) *uuid.UUID {
	id, err := uuid.Parse(auth.AccountIDFromContext(ctx))
	if err != nil {
		return nil
	}
	return &id
}

func registrationMissing(err error) error {
	if db.IsNoRows(err) {
		return ErrRegistrationNotFound
	}
	return err
}

// -- Registration --

func (s *Service) checkRegistration(g *Registration) error {
	if err := validate.Struct(g); err != nil {
		return err
	}
	if g.RegistrationDate.IsZero() {
		g.RegistrationDate = s.now()
	}
	g.RegistrationDate = truncateDay(g.RegistrationDate)
	g.LMP = truncateDayPtr(g.LMP)
	g.EDD = truncateDayPtr(g.EDD)

	if g.RegistrationDate.After(truncateDay(s.now())) {
		return apierr.Invalid("registration_date cannot be in the future")
	}
	if g.LMP != nil {
		if g.LMP.After(g.RegistrationDate) {
			return apierr.Invalid("lmp cannot be after registration_date")
		}
		if g.EDD == nil {
			edd := g.LMP.AddDate(0, 0, GestationDays)
			g.EDD = &edd
		}
	}
	if g.EDD != nil && g.LMP != nil && !g.EDD.After(*g.LMP) {
		return apierr.Invalid("edd must be after lmp")
	}
	if g.Gravida != nil && g.Parity != nil && *g.Parity > *g.Gravida {
		return apierr.Invalid("parity cannot exceed gravida")
	}
	return nil
}

func (s *Service) CreateRegistration(ctx context.Context, g *Registration) error {
	if g.PatientID == uuid.Nil {
		return apierr.Invalid("patient_id is required")
	}
	if err := s.checkRegistration(g); err != nil {
		return err
	}
	ok, err := s.patients.Exists(ctx, g.PatientID)
	if err != nil {
		return fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return apierr.NotFound("patient")
	}
	g.RegisteredBy = actor(ctx)
	if err := s.registrations.Create(ctx, g); err != nil {
		if db.IsUniqueViolation(err, "antenatal_registrations_patient_key") {
			return apierr.Wrap(apierr.KindConflict, "patient already has an antenatal registration", err)
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (s *Service) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	g, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, registrationMissing(err)
	}
	return g, nil
}

// RegistrationForPatient returns the patient's registration, or
// ErrRegistrationNotFound when they have none.
func (s *Service) RegistrationForPatient(ctx context.Context, patientID uuid.UUID) (*Registration, error) {
	g, err := s.registrations.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, registrationMissing(err)
	}
	return g, nil
}

func (s *Service) UpdateRegistration(ctx context.Context, g *Registration) error {
	if err := s.checkRegistration(g); err != nil {
		return err
	}
	if err := s.registrations.Update(ctx, g); err != nil {
		return registrationMissing(err)
	}
	return nil
}

// DeleteRegistration removes a registration and its visits.
func (s *Service) DeleteRegistration(ctx context.Context, id uuid.UUID) error {
	return registrationMissing(s.registrations.Delete(ctx, id))
}

func (s *Service) ListRegistrations(ctx context.Context, limit, offset int) ([]*Registration, int, error) {
	return s.registrations.List(ctx, limit, offset)
}

// -- Visit --

func (s *Service) checkVisit(v *Visit, g *Registration) error {
	if err := validate.Struct(v); err != nil {
		return err
	}
	if v.VisitDate.IsZero() {
		v.VisitDate = s.now()
	}
	v.VisitDate = truncateDay(v.VisitDate)
	v.NextVisitDate = truncateDayPtr(v.NextVisitDate)

	if v.VisitDate.Before(g.RegistrationDate) && (g.LMP == nil || v.VisitDate.Before(*g.LMP)) {
		return apierr.Invalid("visit_date cannot be before the pregnancy began")
	}
	if v.NextVisitDate != nil && !v.NextVisitDate.After(v.VisitDate) {
		return apierr.Invalid("next_visit_date must be after visit_date")
	}
	if v.BPSystolic != nil && v.BPDiastolic != nil && *v.BPDiastolic >= *v.BPSystolic {
		return apierr.Invalid("bp_diastolic must be lower than bp_systolic")
	}
	if v.GestationalAgeWeeks == nil && g.LMP != nil {
		weeks := int(v.VisitDate.Sub(*g.LMP).Hours() / 24 / 7)
		if weeks >= 0 && weeks <= 45 {
			v.GestationalAgeWeeks = &weeks
		}
	}
	return nil
}

// CreateVisit records a visit against its registration. The returned visit
// carries the number it was given among the registration's visits.
func (s *Service) CreateVisit(ctx context.Context, v *Visit) error {
	g, err := s.GetRegistration(ctx, v.RegistrationID)
	if err != nil {
		return err
	}
	if err := s.checkVisit(v, g); err != nil {
		return err
	}
	v.RecordedBy = actor(ctx)
	if err := s.visits.Create(ctx, v); err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.visits.GetByID(ctx, id)
}

func (s *Service) UpdateVisit(ctx context.Context, v *Visit) error {
	existing, err := s.visits.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	g, err := s.GetRegistration(ctx, existing.RegistrationID)
	if err != nil {
		return err
	}
	v.RegistrationID = existing.RegistrationID
	if err := s.checkVisit(v, g); err != nil {
		return err
	}
	if err := s.visits.Update(ctx, v); err != nil {
		return fmt.Errorf("update visit: %w", err)
	}
	return nil
}

func (s *Service) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	return s.visits.Delete(ctx, id)
}

// ListVisits returns a registration's visits in visit-number order.
func (s *Service) ListVisits(ctx context.Context, registrationID uuid.UUID) ([]*Visit, error) {
	if _, err := s.GetRegistration(ctx, registrationID); err != nil {
		return nil, err
	}
	return s.visits.ListByRegistration(ctx, registrationID)
}

// Progress works out where a patient stands in the ANC flow from what is
// stored: saved person details, a registration, and at least one visit.
func (s *Service) Progress(ctx context.Context, patientID uuid.UUID) (*anc.Progress, error) {
	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return nil, apierr.NotFound("patient")
	}

	ctrl := anc.NewController()
	ctrl.SetPatient(patientID.String())
	if err := ctrl.Complete(anc.StagePersonDetails); err != nil {
		return nil, err
	}

	g, err := s.RegistrationForPatient(ctx, patientID)
	switch {
	case errors.Is(err, ErrRegistrationNotFound):
		ctrl.SetRegistration(anc.NotFound())
	case err != nil:
		return nil, err
	default:
		ctrl.SetRegistration(anc.Found(g.ID.String()))
		if err := ctrl.Complete(anc.StageRegistration); err != nil {
			return nil, err
		}
		n, err := s.visits.CountByRegistration(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("count visits: %w", err)
		}
		if n > 0 {
			if err := ctrl.Complete(anc.StageVisits); err != nil {
				return nil, err
			}
		}
	}
	p := ctrl.Snapshot()
	return &p, nil
}
