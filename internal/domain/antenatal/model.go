package antenatal

import (
	"time"

	"github.com/google/uuid"
)

// GestationDays is the span from the last menstrual period to the expected
// date of delivery.
const GestationDays = 280

// Registration maps to the antenatal_registrations table. A patient has at
// most one.
type Registration struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationDate time.Time  `db:"registration_date" json:"registration_date"`
	LMP              *time.Time `db:"lmp" json:"lmp,omitempty"`
	EDD              *time.Time `db:"edd" json:"edd,omitempty"`
	Gravida          *int       `db:"gravida" json:"gravida,omitempty" validate:"omitempty,gte=0,lte=30"`
	Parity           *int       `db:"parity" json:"parity,omitempty" validate:"omitempty,gte=0,lte=30"`
	BloodGroup       *string    `db:"blood_group" json:"blood_group,omitempty" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	HIVStatus        *string    `db:"hiv_status" json:"hiv_status,omitempty" validate:"omitempty,oneof=positive negative unknown declined"`
	RegisteredBy     *uuid.UUID `db:"registered_by" json:"registered_by,omitempty"`
	Notes            *string    `db:"notes" json:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Visit maps to the antenatal_visits table. VisitNumber is assigned by the
// server: visits of a registration are numbered 1..n in visit-date order.
type Visit struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	RegistrationID      uuid.UUID  `db:"registration_id" json:"registration_id"`
	VisitNumber         int        `db:"visit_number" json:"visit_number"`
	VisitDate           time.Time  `db:"visit_date" json:"visit_date"`
	GestationalAgeWeeks *int       `db:"gestational_age_weeks" json:"gestational_age_weeks,omitempty" validate:"omitempty,gte=0,lte=45"`
	WeightKg            *float64   `db:"weight_kg" json:"weight_kg,omitempty" validate:"omitempty,gt=0,lte=300"`
	BPSystolic          *int       `db:"bp_systolic" json:"bp_systolic,omitempty" validate:"omitempty,gte=50,lte=300"`
	BPDiastolic         *int       `db:"bp_diastolic" json:"bp_diastolic,omitempty" validate:"omitempty,gte=30,lte=200"`
	FundalHeightCm      *float64   `db:"fundal_height_cm" json:"fundal_height_cm,omitempty" validate:"omitempty,gt=0,lte=60"`
	FetalHeartRate      *int       `db:"fetal_heart_rate" json:"fetal_heart_rate,omitempty" validate:"omitempty,gte=50,lte=250"`
	Notes               *string    `db:"notes" json:"notes,omitempty" validate:"omitempty,max=2000"`
	NextVisitDate       *time.Time `db:"next_visit_date" json:"next_visit_date,omitempty"`
	RecordedBy          *uuid.UUID `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// truncateDay drops the clock part of t, keeping its calendar date.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func truncateDayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := truncateDay(*t)
	return &d
}
