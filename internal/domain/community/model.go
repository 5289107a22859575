package community

import (
	"time"

	"github.com/google/uuid"

	"github.com/mch/mch/pkg/geo"
)

// Community maps to the communities table. Each row is one leaf of the
// region > district > subdistrict > community hierarchy.
type Community struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Region        string    `db:"region" json:"region" validate:"required,max=100"`
	District      string    `db:"district" json:"district" validate:"required,max=100"`
	Subdistrict   string    `db:"subdistrict" json:"subdistrict" validate:"required,max=100"`
	CommunityName string    `db:"community_name" json:"community_name" validate:"required,max=150"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Community) Record() geo.CommunityRecord {
	return geo.CommunityRecord{
		Region:        c.Region,
		District:      c.District,
		Subdistrict:   c.Subdistrict,
		CommunityName: c.CommunityName,
	}
}

func FromRecord(r geo.CommunityRecord) *Community {
	return &Community{
		Region:        r.Region,
		District:      r.District,
		Subdistrict:   r.Subdistrict,
		CommunityName: r.CommunityName,
	}
}
