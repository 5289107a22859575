package report

import (
	"time"

	"github.com/google/uuid"
)

// MaxRangeDays bounds a data-capture window.
const MaxRangeDays = 366

// Query is the raw report window as it arrives on the query string. Both
// ends are inclusive calendar dates.
type Query struct {
	From string `query:"from" json:"from" validate:"required,date"`
	To   string `query:"to" json:"to" validate:"required,date"`
}

// Row is one account's data entry in a report window.
type Row struct {
	AccountID     uuid.UUID `json:"account_id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	UserType      string    `json:"user_type"`
	Patients      int       `json:"patients"`
	Registrations int       `json:"registrations"`
	Visits        int       `json:"visits"`
	KitLogs       int       `json:"kit_logs"`
}

func (r Row) Total() int {
	return r.Patients + r.Registrations + r.Visits + r.KitLogs
}

type DataCapture struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Rows []Row     `json:"rows"`
}

// Totals sums every row.
func (d *DataCapture) Totals() Row {
	var t Row
	for _, r := range d.Rows {
		t.Patients += r.Patients
		t.Registrations += r.Registrations
		t.Visits += r.Visits
		t.KitLogs += r.KitLogs
	}
	return t
}
