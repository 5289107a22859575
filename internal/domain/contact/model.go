package contact

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/pkg/geo"
)

// Contact is an address-book entry: a facility, colleague or volunteer.
type Contact struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name" validate:"required,max=200"`
	Phone        *string   `db:"phone" json:"phone,omitempty" validate:"omitempty,max=32"`
	Email        *string   `db:"email" json:"email,omitempty" validate:"omitempty,email,max=254"`
	Organization *string   `db:"organization" json:"organization,omitempty" validate:"omitempty,max=200"`
	Role         *string   `db:"role" json:"role,omitempty" validate:"omitempty,max=100"`
	Region       *string   `db:"region" json:"region,omitempty"`
	District     *string   `db:"district" json:"district,omitempty"`
	Subdistrict  *string   `db:"subdistrict" json:"subdistrict,omitempty"`
	Community    *string   `db:"community" json:"community,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Contact) Location() geo.Selection {
	return geo.Selection{
		Region:      deref(c.Region),
		District:    deref(c.District),
		Subdistrict: deref(c.Subdistrict),
		Community:   deref(c.Community),
	}
}

type Filter struct {
	Search   string
	Region   string
	District string
}

func normalize(c *Contact) {
	c.Name = strings.TrimSpace(c.Name)
	for _, f := range []**string{&c.Phone, &c.Email, &c.Organization, &c.Role,
		&c.Region, &c.District, &c.Subdistrict, &c.Community} {
		*f = optional(*f)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
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
