package dashboard

// UpcomingWindowDays is how far ahead scheduled ANC visits are counted.
const UpcomingWindowDays = 7

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
