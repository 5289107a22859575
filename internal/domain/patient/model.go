package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/pkg/geo"
)

// Patient maps to the patients table.
type Patient struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	FirstName     string     `db:"first_name" json:"first_name" validate:"required,max=100"`
	LastName      string     `db:"last_name" json:"last_name" validate:"required,max=100"`
	OtherNames    *string    `db:"other_names" json:"other_names,omitempty" validate:"omitempty,max=200"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty" validate:"omitempty,max=32"`
	NationalID    *string    `db:"national_id" json:"national_id,omitempty" validate:"omitempty,max=64"`
	MaritalStatus *string    `db:"marital_status" json:"marital_status,omitempty" validate:"omitempty,oneof=single married divorced widowed separated cohabiting"`
	Occupation    *string    `db:"occupation" json:"occupation,omitempty" validate:"omitempty,max=100"`
	Region        string     `db:"region" json:"region" validate:"required,max=100"`
	District      string     `db:"district" json:"district" validate:"required,max=100"`
	Subdistrict   string     `db:"subdistrict" json:"subdistrict" validate:"required,max=100"`
	Community     string     `db:"community" json:"community" validate:"required,max=150"`
	CreatedBy     *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Location returns the patient's address as a cascade selection.
func (p *Patient) Location() geo.Selection {
	return geo.Selection{Region: p.Region, District: p.District, Subdistrict: p.Subdistrict, Community: p.Community}
}

// Filter narrows a patient listing. Location fields match exactly.
type Filter struct {
	Search      string
	Region      string
	District    string
	Subdistrict string
	Community   string
}

func normalize(p *Patient) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.OtherNames = optional(p.OtherNames)
	p.Phone = optional(p.Phone)
	p.NationalID = optional(p.NationalID)
	p.Occupation = optional(p.Occupation)
	if p.MaritalStatus != nil {
		v := strings.ToLower(strings.TrimSpace(*p.MaritalStatus))
		p.MaritalStatus = optional(&v)
	}
	p.Region = strings.TrimSpace(p.Region)
	p.District = strings.TrimSpace(p.District)
	p.Subdistrict = strings.TrimSpace(p.Subdistrict)
	p.Community = strings.TrimSpace(p.Community)
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
