package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mch/mch/pkg/anc"
	"github.com/mch/mch/pkg/geo"
)

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*Account, error) {
	var out Account
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCommunities returns the full community list used by the cascade.
func (c *Client) ListCommunities(ctx context.Context) ([]Community, error) {
	var out []Community
	if err := c.Do(ctx, http.MethodGet, "/communities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CommunityRecords is ListCommunities projected onto the cascade input.
func (c *Client) CommunityRecords(ctx context.Context) ([]geo.CommunityRecord, error) {
	communities, err := c.ListCommunities(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]geo.CommunityRecord, len(communities))
	for i, cm := range communities {
		records[i] = cm.Record()
	}
	return records, nil
}

// CommunityOptions asks the server for the option lists implied by sel.
func (c *Client) CommunityOptions(ctx context.Context, sel geo.Selection) (*geo.OptionSet, error) {
	q := url.Values{}
	for _, t := range geo.Tiers {
		if v := sel.Value(t); v != "" {
			q.Set(t.String(), v)
		}
	}
	path := "/communities/options"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out geo.OptionSet
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatientFilter narrows ListPatients.
type PatientFilter struct {
	Search    string
	Region    string
	District  string
	Community string
	Limit     int
	Offset    int
}

func (f PatientFilter) query() string {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search", f.Search)
	set("region", f.Region)
	set("district", f.District)
	set("community", f.Community)
	if f.Limit > 0 {
		q.Set("limit", fmt.Sprint(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", fmt.Sprint(f.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) ListPatients(ctx context.Context, f PatientFilter) (*Page[Patient], error) {
	var out Page[Patient]
	if err := c.Do(ctx, http.MethodGet, "/patients"+f.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPatient(ctx context.Context, id string) (*Patient, error) {
	var out Patient
	if err := c.Do(ctx, http.MethodGet, "/patients/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	var out Patient
	if err := c.Do(ctx, http.MethodPost, "/patients", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	var out Patient
	if err := c.Do(ctx, http.MethodPut, "/patients/"+url.PathEscape(p.ID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupRegistration fetches the ANC registration of a patient. A 404 is a
// NotFound result and any other failure is FetchFailed.
func (c *Client) LookupRegistration(ctx context.Context, patientID string) (*AntenatalRegistration, anc.Lookup) {
	var out AntenatalRegistration
	err := c.Do(ctx, http.MethodGet, "/patients/"+url.PathEscape(patientID)+"/antenatal-registration", nil, &out)
	switch {
	case err == nil:
		return &out, anc.Found(out.ID)
	case IsStatus(err, http.StatusNotFound):
		return nil, anc.NotFound()
	}
	return nil, anc.FetchFailed(err)
}

// FetchRegistration implements anc.RegistrationFetcher.
func (c *Client) FetchRegistration(ctx context.Context, patientID string) anc.Lookup {
	_, l := c.LookupRegistration(ctx, patientID)
	return l
}

func (c *Client) ANCProgress(ctx context.Context, patientID string) (*ANCProgress, error) {
	var out ANCProgress
	if err := c.Do(ctx, http.MethodGet, "/patients/"+url.PathEscape(patientID)+"/anc-progress", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRegistration(ctx context.Context, r *AntenatalRegistration) (*AntenatalRegistration, error) {
	var out AntenatalRegistration
	if err := c.Do(ctx, http.MethodPost, "/antenatal-registrations", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListVisits(ctx context.Context, registrationID string) ([]AntenatalVisit, error) {
	var out []AntenatalVisit
	if err := c.Do(ctx, http.MethodGet, "/antenatal-registrations/"+url.PathEscape(registrationID)+"/visits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateVisit(ctx context.Context, v *AntenatalVisit) (*AntenatalVisit, error) {
	if v.RegistrationID == "" {
		return nil, errors.New("registration id is required")
	}
	var out AntenatalVisit
	if err := c.Do(ctx, http.MethodPost, "/antenatal-registrations/"+url.PathEscape(v.RegistrationID)+"/visits", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListKitLogs(ctx context.Context, patientID string) (*Page[KitDistroLog], error) {
	path := "/kit-distro-logs"
	if patientID != "" {
		path += "?patient_id=" + url.QueryEscape(patientID)
	}
	var out Page[KitDistroLog]
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateKitLog(ctx context.Context, k *KitDistroLog) (*KitDistroLog, error) {
	var out KitDistroLog
	if err := c.Do(ctx, http.MethodPost, "/kit-distro-logs", k, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListContacts(ctx context.Context) (*Page[Contact], error) {
	var out Page[Contact]
	if err := c.Do(ctx, http.MethodGet, "/contacts", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateContact(ctx context.Context, ct *Contact) (*Contact, error) {
	var out Contact
	if err := c.Do(ctx, http.MethodPost, "/contacts", ct, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateReferral(ctx context.Context, r *Referral) (*Referral, error) {
	var out Referral
	if err := c.Do(ctx, http.MethodPost, "/referrals", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendFeedback(ctx context.Context, f *Feedback) (*Feedback, error) {
	var out Feedback
	if err := c.Do(ctx, http.MethodPost, "/feedback", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func reportQuery(from, to time.Time, format string) string {
	q := url.Values{}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	if format != "" {
		q.Set("format", format)
	}
	return "/reports/data-capture?" + q.Encode()
}

func (c *Client) DataCaptureReport(ctx context.Context, from, to time.Time) (*DataCaptureReport, error) {
	var out DataCaptureReport
	if err := c.Do(ctx, http.MethodGet, reportQuery(from, to, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DataCaptureReportXLSX downloads the report as a spreadsheet.
func (c *Client) DataCaptureReportXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	return c.Download(ctx, reportQuery(from, to, "xlsx"))
}

func (c *Client) DashboardAggregates(ctx context.Context) (*Aggregates, error) {
	var out Aggregates
	if err := c.Do(ctx, http.MethodGet, "/dashboard/aggregates", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.Do(ctx, http.MethodGet, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, s *Settings) (*Settings, error) {
	var out Settings
	if err := c.Do(ctx, http.MethodPut, "/settings", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
