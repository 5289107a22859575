package referral

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/pkg/geo"
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// transitions lists the statuses each status may move to.
var transitions = map[string][]string{
	StatusPending:  {StatusAccepted, StatusCancelled},
	StatusAccepted: {StatusCompleted, StatusCancelled},
}

// Referral sends a patient on to another facility. The location is where
// the patient is referred to.
type Referral struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Reason      string     `db:"reason" json:"reason" validate:"required,max=2000"`
	Urgency     string     `db:"urgency" json:"urgency" validate:"required,oneof=routine urgent emergency"`
	Status      string     `db:"status" json:"status"`
	Region      string     `db:"region" json:"region" validate:"required"`
	District    string     `db:"district" json:"district" validate:"required"`
	Subdistrict string     `db:"subdistrict" json:"subdistrict" validate:"required"`
	Community   string     `db:"community" json:"community" validate:"required"`
	Facility    *string    `db:"facility" json:"facility,omitempty" validate:"omitempty,max=200"`
	ReferredBy  *uuid.UUID `db:"referred_by" json:"referred_by,omitempty"`
	ReferredAt  time.Time  `db:"referred_at" json:"referred_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func (r *Referral) Location() geo.Selection {
	return geo.Selection{Region: r.Region, District: r.District, Subdistrict: r.Subdistrict, Community: r.Community}
}

type StatusChange struct {
	Status string `json:"status" validate:"required,oneof=pending accepted completed cancelled"`
}

type Filter struct {
	PatientID *uuid.UUID
	Status    string
	Urgency   string
}

func normalize(r *Referral) {
	r.Reason = strings.TrimSpace(r.Reason)
	r.Urgency = strings.ToLower(strings.TrimSpace(r.Urgency))
	r.Region = strings.TrimSpace(r.Region)
	r.District = strings.TrimSpace(r.District)
	r.Subdistrict = strings.TrimSpace(r.Subdistrict)
	r.Community = strings.TrimSpace(r.Community)
	if r.Facility != nil {
		v := strings.TrimSpace(*r.Facility)
		r.Facility = &v
		if v == "" {
			r.Facility = nil
		}
	}
}

func canMove(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
