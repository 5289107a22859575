package anc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StartsOnPersonDetails(t *testing.T) {
	c := NewController()
	assert.Equal(t, StagePersonDetails, c.Current())
	assert.True(t, c.Accessible(StagePersonDetails))
	assert.False(t, c.Accessible(StageRegistration))
	assert.False(t, c.Accessible(StageVisits))
	assert.Empty(t, c.Completed())
}

func TestController_GoToWithoutPatient(t *testing.T) {
	c := NewController()
	err := c.GoTo(StageVisits)
	assert.ErrorIs(t, err, ErrStageInaccessible)
	assert.Equal(t, StagePersonDetails, c.Current())
}

func TestController_AccessibleIndependentOfCompletion(t *testing.T) {
	c := NewController()
	c.SetPatient("p-1")

	require.NoError(t, c.GoTo(StageVisits))
	assert.Equal(t, StageVisits, c.Current())
	assert.False(t, c.IsComplete(StageRegistration))
}

func TestController_CompleteAdvances(t *testing.T) {
	c := NewController()
	c.SetPatient("p-1")

	require.NoError(t, c.Complete(StagePersonDetails))
	assert.Equal(t, StageRegistration, c.Current())

	require.NoError(t, c.Complete(StageRegistration))
	assert.Equal(t, StageVisits, c.Current())

	require.NoError(t, c.Complete(StageVisits))
	assert.Equal(t, StageVisits, c.Current())
	assert.Equal(t, []Stage{StagePersonDetails, StageRegistration, StageVisits}, c.Completed())
}

func TestController_CompletePersonDetailsNeedsPatient(t *testing.T) {
	c := NewController()
	assert.ErrorIs(t, c.Complete(StagePersonDetails), ErrStageInaccessible)
	assert.ErrorIs(t, c.Complete(Stage(9)), ErrUnknownStage)
}

func TestController_SwitchingPatientResets(t *testing.T) {
	c := NewController()
	c.SetPatient("p-1")
	require.NoError(t, c.Complete(StagePersonDetails))
	c.SetRegistration(Found("r-1"))

	c.SetPatient("p-1")
	assert.True(t, c.IsComplete(StageRegistration))

	c.SetPatient("p-2")
	assert.Empty(t, c.Completed())
	assert.Equal(t, LookupPending, c.Registration().Status)
	assert.Equal(t, StageRegistration, c.Current())

	c.SetPatient("")
	assert.Equal(t, StagePersonDetails, c.Current())
}

func TestController_VisitsPlaceholder(t *testing.T) {
	c := NewController()
	c.SetPatient("p-1")
	require.NoError(t, c.GoTo(StageVisits))

	assert.Equal(t, "Loading ANC registration", c.View().Placeholder)

	c.SetRegistration(NotFound())
	assert.Contains(t, c.View().Placeholder, "registration required")

	c.SetRegistration(FetchFailed(errors.New("timeout")))
	assert.Contains(t, c.View().Placeholder, "timeout")

	c.SetRegistration(Found("r-9"))
	v := c.View()
	assert.Empty(t, v.Placeholder)
	assert.Equal(t, "r-9", v.RegistrationID)
	assert.True(t, c.IsComplete(StageRegistration))
}

func TestStage_TextRoundTrip(t *testing.T) {
	p := NewController().Snapshot()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"current":"PERSON_DETAILS"`)
	assert.Contains(t, string(b), `"ANC_VISITS":false`)

	var s Stage
	require.NoError(t, s.UnmarshalText([]byte("ANC_REGISTRATION")))
	assert.Equal(t, StageRegistration, s)
	assert.Error(t, s.UnmarshalText([]byte("DELIVERY")))
}
