package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mch/mch/pkg/anc"
	"github.com/mch/mch/pkg/geo"
)

func TestDo_SendsJSONHeadersAndBearer(t *testing.T) {
	var gotAuth, gotType, gotAccept, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"p-1","first_name":"Ama"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken(func() string { return "tok" }))
	p, err := c.CreatePatient(context.Background(), &Patient{FirstName: "Ama"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "application/json", gotAccept)
	assert.Contains(t, gotBody, `"first_name":"Ama"`)
	assert.Equal(t, "p-1", p.ID)
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).Logout(context.Background()))
	assert.False(t, sawAuth)
}

func TestDo_ErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message key", http.StatusBadRequest, `{"message":"region is required"}`, "region is required"},
		{"error key", http.StatusUnauthorized, `{"error":"invalid credentials"}`, "invalid credentials"},
		{"no body", http.StatusInternalServerError, ``, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Me(context.Background())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestDo_NormalizesCommunityKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"Region":"Wa West","District":"Jirapa","Subdistrict":"Y","CommunityName":"C2"},
			{"region":"Wa West","district":"Nadowli","subdistrict":"X","community_name":"C1"}
		]`))
	}))
	defer srv.Close()

	records, err := New(srv.URL).CommunityRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C2", records[0].CommunityName)
	assert.Equal(t, "Jirapa", records[0].District)
	assert.Equal(t, []string{"Jirapa", "Nadowli"}, geo.Options(records, geo.Selection{Region: "Wa West"}).Districts)
}

func TestBusyTracker_ReleasedAfterConcurrentRequests(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var mu sync.Mutex
	var flips []bool
	busy := NewBusyTracker(func(b bool) {
		mu.Lock()
		flips = append(flips, b)
		mu.Unlock()
	})
	c := New(srv.URL, WithBusyTracker(busy))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetSettings(context.Background())
		}()
	}
	<-arrived
	<-arrived
	assert.True(t, busy.Busy())
	close(release)
	wg.Wait()

	assert.False(t, busy.Busy())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, flips)
}

func TestBusyTracker_ReleasedOnError(t *testing.T) {
	busy := NewBusyTracker(nil)
	c := New("http://127.0.0.1:1", WithBusyTracker(busy))
	_, err := c.Me(context.Background())
	assert.Error(t, err)
	assert.False(t, busy.Busy())
}

func TestLookupRegistration_TaggedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/patients/has/antenatal-registration":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "r-1", "patient_id": "has"})
		case "/patients/none/antenatal-registration":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"antenatal registration not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	reg, l := c.LookupRegistration(context.Background(), "has")
	assert.Equal(t, anc.LookupFound, l.Status)
	assert.Equal(t, "r-1", reg.ID)

	_, l = c.LookupRegistration(context.Background(), "none")
	assert.Equal(t, anc.LookupNotFound, l.Status)

	l = c.FetchRegistration(context.Background(), "broken")
	assert.Equal(t, anc.LookupFetchFailed, l.Status)
	assert.True(t, IsStatus(l.Err, http.StatusBadGateway))
}

func TestCommunityOptions_Query(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"regions":["Wa West"],"districts":["Jirapa","Nadowli"],"subdistricts":[],"communities":[]}`))
	}))
	defer srv.Close()

	opts, err := New(srv.URL).CommunityOptions(context.Background(), geo.Selection{Region: "Wa West"})
	require.NoError(t, err)
	assert.Equal(t, "region=Wa+West", gotQuery)
	assert.Equal(t, []string{"Jirapa", "Nadowli"}, opts.Districts)
}

func TestANCProgress_KeepsStageKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":"ANC_VISITS","completed":["PERSON_DETAILS"],` +
			`"accessible":{"PERSON_DETAILS":true,"ANC_REGISTRATION":true,"ANC_VISITS":true},` +
			`"view":{"stage":"ANC_VISITS","patient_id":"p-1"}}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL).ANCProgress(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, anc.StageVisits, p.Current)
	assert.True(t, p.Accessible[anc.StageRegistration])
}
