package settings

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/pkg/geo"
)

// Settings is the single row of deployment-wide preferences.
type Settings struct {
	DefaultRegion      *string    `db:"default_region" json:"default_region,omitempty"`
	DefaultDistrict    *string    `db:"default_district" json:"default_district,omitempty"`
	IdleTimeoutMinutes int        `db:"idle_timeout_minutes" json:"idle_timeout_minutes" validate:"min=1,max=1440"`
	UpdatedBy          *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

func (s *Settings) Location() geo.Selection {
	return geo.Selection{Region: deref(s.DefaultRegion), District: deref(s.DefaultDistrict)}
}

func normalize(s *Settings) {
	for _, p := range []**string{&s.DefaultRegion, &s.DefaultDistrict} {
		if *p == nil {
			continue
		}
		v := strings.TrimSpace(**p)
		if v == "" {
			*p = nil
			continue
		}
		*p = &v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
