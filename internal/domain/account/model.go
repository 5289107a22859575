package account

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/pkg/geo"
)

// Account maps to the accounts table.
type Account struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Email        *string    `db:"email" json:"email,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	UserType     string     `db:"user_type" json:"user_type"`
	Active       bool       `db:"active" json:"active"`
	Region       *string    `db:"region" json:"region,omitempty"`
	District     *string    `db:"district" json:"district,omitempty"`
	Subdistrict  *string    `db:"subdistrict" json:"subdistrict,omitempty"`
	Community    *string    `db:"community" json:"community,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Location returns the account's assigned area.
func (a *Account) Location() geo.Selection {
	return geo.Selection{
		Region:      deref(a.Region),
		District:    deref(a.District),
		Subdistrict: deref(a.Subdistrict),
		Community:   deref(a.Community),
	}
}

type CreateRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=64"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	FullName    string  `json:"full_name" validate:"required,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	UserType    string  `json:"user_type" validate:"required,user_type"`
	Region      *string `json:"region,omitempty"`
	District    *string `json:"district,omitempty"`
	Subdistrict *string `json:"subdistrict,omitempty"`
	Community   *string `json:"community,omitempty"`
}

type UpdateRequest struct {
	FullName    string  `json:"full_name" validate:"required,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	UserType    string  `json:"user_type" validate:"required,user_type"`
	Active      *bool   `json:"active,omitempty"`
	Region      *string `json:"region,omitempty"`
	District    *string `json:"district,omitempty"`
	Subdistrict *string `json:"subdistrict,omitempty"`
	Community   *string `json:"community,omitempty"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   *Account  `json:"account"`
}

// Filter narrows an account listing.
type Filter struct {
	UserType string
	Search   string
	Active   *bool
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional trims s and maps blank to nil.
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
