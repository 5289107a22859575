// Package permission maps account user types to the actions they may take.
// The same table is used by the server to authorize requests and by the
// client to decide which commands to offer.
package permission

import "sort"

// Permission is a single capability, named "<resource>:<action>".
type Permission string

const (
	PatientsRead      Permission = "patients:read"
	PatientsWrite     Permission = "patients:write"
	PatientsDelete    Permission = "patients:delete"
	AntenatalRead     Permission = "antenatal:read"
	AntenatalWrite    Permission = "antenatal:write"
	KitsRead          Permission = "kits:read"
	KitsWrite         Permission = "kits:write"
	ContactsRead      Permission = "contacts:read"
	ContactsWrite     Permission = "contacts:write"
	ReferralsRead     Permission = "referrals:read"
	ReferralsWrite    Permission = "referrals:write"
	CommunitiesRead   Permission = "communities:read"
	CommunitiesManage Permission = "communities:manage"
	AccountsManage    Permission = "accounts:manage"
	SettingsManage    Permission = "settings:manage"
	ReportsView       Permission = "reports:view"
	DashboardView     Permission = "dashboard:view"
	FeedbackSubmit    Permission = "feedback:submit"
	FeedbackRead      Permission = "feedback:read"
)

// User types.
const (
	Admin                 = "admin"
	Supervisor            = "supervisor"
	Midwife               = "midwife"
	CommunityHealthWorker = "community_health_worker"
	DataClerk             = "data_clerk"
)

var fieldStaff = []Permission{
	PatientsRead, PatientsWrite,
	AntenatalRead, AntenatalWrite,
	KitsRead, KitsWrite,
	ContactsRead,
	ReferralsRead, ReferralsWrite,
	CommunitiesRead,
	FeedbackSubmit,
}

var byUserType = map[string][]Permission{
	Admin: {
		PatientsRead, PatientsWrite, PatientsDelete,
		AntenatalRead, AntenatalWrite,
		KitsRead, KitsWrite,
		ContactsRead, ContactsWrite,
		ReferralsRead, ReferralsWrite,
		CommunitiesRead, CommunitiesManage,
		AccountsManage, SettingsManage,
		ReportsView, DashboardView,
		FeedbackSubmit, FeedbackRead,
	},
	Supervisor: {
		PatientsRead, PatientsWrite,
		AntenatalRead, AntenatalWrite,
		KitsRead, KitsWrite,
		ContactsRead, ContactsWrite,
		ReferralsRead, ReferralsWrite,
		CommunitiesRead,
		ReportsView, DashboardView,
		FeedbackSubmit, FeedbackRead,
	},
	Midwife:               fieldStaff,
	CommunityHealthWorker: fieldStaff,
	DataClerk: {
		PatientsRead, PatientsWrite,
		AntenatalRead, AntenatalWrite,
		KitsRead, KitsWrite,
		CommunitiesRead,
		ReportsView,
		FeedbackSubmit,
	},
}

// ValidUserType reports whether userType has an entry in the table.
func ValidUserType(userType string) bool {
	_, ok := byUserType[userType]
	return ok
}

// UserTypes returns every known user type, sorted.
func UserTypes() []string {
	out := make([]string, 0, len(byUserType))
	for ut := range byUserType {
		out = append(out, ut)
	}
	sort.Strings(out)
	return out
}

// ForUserType returns the permissions granted to userType. Unknown types get
// none.
func ForUserType(userType string) []Permission {
	perms := byUserType[userType]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Strings converts perms to their string form.
func Strings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// Set is a lookup of granted permissions.
type Set map[Permission]struct{}

// NewSet builds a Set from perms.
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// FromStrings builds a Set from string permissions, as carried in a token.
func FromStrings(perms []string) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[Permission(p)] = struct{}{}
	}
	return s
}

// Has reports whether p is granted.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether at least one of perms is granted.
func (s Set) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}
