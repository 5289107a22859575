package antenatal

import (
	"context"

	"github.com/google/uuid"
)

type RegistrationRepository interface {
	Create(ctx context.Context, r *Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*Registration, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*Registration, error)
	Update(ctx context.Context, r *Registration) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Registration, int, error)
}

// VisitRepository keeps visit numbers contiguous: Create, Update and Delete
// renumber the registration's visits by visit date.
type VisitRepository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*Visit, error)
	CountByRegistration(ctx context.Context, registrationID uuid.UUID) (int, error)
}
