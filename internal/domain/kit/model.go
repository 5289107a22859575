package kit

import (
	"time"

	"github.com/google/uuid"
)

// Kit types handed out to patients.
const (
	MamaKit     = "mama_kit"
	DeliveryKit = "delivery_kit"
	NewbornKit  = "newborn_kit"
	HygieneKit  = "hygiene_kit"
)

// KitTypes lists every kit type in display order.
var KitTypes = []string{MamaKit, DeliveryKit, NewbornKit, HygieneKit}

// DistroLog maps to the kit_distro_logs table.
type DistroLog struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	KitType       string     `db:"kit_type" json:"kit_type" validate:"required,oneof=mama_kit delivery_kit newborn_kit hygiene_kit"`
	Quantity      int        `db:"quantity" json:"quantity" validate:"gte=1,lte=100"`
	DistributedAt time.Time  `db:"distributed_at" json:"distributed_at"`
	DistributedBy *uuid.UUID `db:"distributed_by" json:"distributed_by,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

type Filter struct {
	PatientID *uuid.UUID
	KitType   string
}
