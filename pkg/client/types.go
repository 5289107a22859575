package client

import (
	"time"

	"github.com/mch/mch/pkg/anc"
	"github.com/mch/mch/pkg/geo"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	UserType    string    `json:"user_type"`
	Active      bool      `json:"active"`
	Region      string    `json:"region,omitempty"`
	District    string    `json:"district,omitempty"`
	Subdistrict string    `json:"subdistrict,omitempty"`
	Community   string    `json:"community,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

type Community struct {
	ID            string    `json:"id"`
	Region        string    `json:"region"`
	District      string    `json:"district"`
	Subdistrict   string    `json:"subdistrict"`
	CommunityName string    `json:"community_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Record returns the cascade view of c.
func (c Community) Record() geo.CommunityRecord {
	return geo.CommunityRecord{
		Region:        c.Region,
		District:      c.District,
		Subdistrict:   c.Subdistrict,
		CommunityName: c.CommunityName,
	}
}

type Patient struct {
	ID            string     `json:"id,omitempty"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	OtherNames    string     `json:"other_names,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	NationalID    string     `json:"national_id,omitempty"`
	MaritalStatus string     `json:"marital_status,omitempty"`
	Occupation    string     `json:"occupation,omitempty"`
	Region        string     `json:"region"`
	District      string     `json:"district"`
	Subdistrict   string     `json:"subdistrict"`
	Community     string     `json:"community"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

// Location returns the patient's address as a cascade selection.
func (p Patient) Location() geo.Selection {
	return geo.Selection{Region: p.Region, District: p.District, Subdistrict: p.Subdistrict, Community: p.Community}
}

type AntenatalRegistration struct {
	ID               string     `json:"id,omitempty"`
	PatientID        string     `json:"patient_id"`
	RegistrationDate time.Time  `json:"registration_date"`
	LMP              *time.Time `json:"lmp,omitempty"`
	EDD              *time.Time `json:"edd,omitempty"`
	Gravida          *int       `json:"gravida,omitempty"`
	Parity           *int       `json:"parity,omitempty"`
	BloodGroup       string     `json:"blood_group,omitempty"`
	HIVStatus        string     `json:"hiv_status,omitempty"`
	RegisteredBy     string     `json:"registered_by,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

type AntenatalVisit struct {
	ID                  string     `json:"id,omitempty"`
	RegistrationID      string     `json:"registration_id"`
	VisitNumber         int        `json:"visit_number,omitempty"`
	VisitDate           time.Time  `json:"visit_date"`
	GestationalAgeWeeks *int       `json:"gestational_age_weeks,omitempty"`
	WeightKg            *float64   `json:"weight_kg,omitempty"`
	BPSystolic          *int       `json:"bp_systolic,omitempty"`
	BPDiastolic         *int       `json:"bp_diastolic,omitempty"`
	FundalHeightCm      *float64   `json:"fundal_height_cm,omitempty"`
	FetalHeartRate      *int       `json:"fetal_heart_rate,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	NextVisitDate       *time.Time `json:"next_visit_date,omitempty"`
	RecordedBy          string     `json:"recorded_by,omitempty"`
}

type KitDistroLog struct {
	ID            string    `json:"id,omitempty"`
	PatientID     string    `json:"patient_id"`
	KitType       string    `json:"kit_type"`
	Quantity      int       `json:"quantity"`
	DistributedAt time.Time `json:"distributed_at"`
	DistributedBy string    `json:"distributed_by,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type Contact struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
	Role         string `json:"role,omitempty"`
	Region       string `json:"region,omitempty"`
	District     string `json:"district,omitempty"`
	Subdistrict  string `json:"subdistrict,omitempty"`
	Community    string `json:"community,omitempty"`
}

type Referral struct {
	ID          string    `json:"id,omitempty"`
	PatientID   string    `json:"patient_id"`
	Reason      string    `json:"reason"`
	Urgency     string    `json:"urgency"`
	Status      string    `json:"status,omitempty"`
	Region      string    `json:"region"`
	District    string    `json:"district"`
	Subdistrict string    `json:"subdistrict"`
	Community   string    `json:"community"`
	Facility    string    `json:"facility,omitempty"`
	ReferredBy  string    `json:"referred_by,omitempty"`
	ReferredAt  time.Time `json:"referred_at,omitempty"`
}

type Feedback struct {
	ID        string    `json:"id,omitempty"`
	AccountID string    `json:"account_id,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Settings struct {
	DefaultRegion      string `json:"default_region,omitempty"`
	DefaultDistrict    string `json:"default_district,omitempty"`
	IdleTimeoutMinutes int    `json:"idle_timeout_minutes"`
}

// DataCaptureRow is one account's activity in a report window.
type DataCaptureRow struct {
	AccountID     string `json:"account_id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	UserType      string `json:"user_type"`
	Patients      int    `json:"patients"`
	Registrations int    `json:"registrations"`
	Visits        int    `json:"visits"`
	KitLogs       int    `json:"kit_logs"`
}

type DataCaptureReport struct {
	From time.Time        `json:"from"`
	To   time.Time        `json:"to"`
	Rows []DataCaptureRow `json:"rows"`
}

type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

type KitCount struct {
	KitType  string `json:"kit_type"`
	Quantity int    `json:"quantity"`
}

type Aggregates struct {
	Patients         int           `json:"patients"`
	Registrations    int           `json:"registrations"`
	Visits           int           `json:"visits"`
	KitsDistributed  int           `json:"kits_distributed"`
	Referrals        int           `json:"referrals"`
	UpcomingVisits   int           `json:"upcoming_visits"`
	PatientsByRegion []RegionCount `json:"patients_by_region"`
	KitsByType       []KitCount    `json:"kits_by_type"`
}

// ANCProgress is the server's view of a patient's ANC stages.
type ANCProgress = anc.Progress
