package anc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context, patientID string) Lookup

func (f fetcherFunc) FetchRegistration(ctx context.Context, patientID string) Lookup {
	return f(ctx, patientID)
}

func TestFlow_AppliesLookup(t *testing.T) {
	f := NewFlow(NewController(), fetcherFunc(func(_ context.Context, id string) Lookup {
		if id == "p-1" {
			return Found("r-1")
		}
		return NotFound()
	}))

	res, applied := f.SelectPatient(context.Background(), "p-1")
	assert.True(t, applied)
	assert.Equal(t, LookupFound, res.Status)
	assert.True(t, f.Controller().IsComplete(StageRegistration))

	res, applied = f.SelectPatient(context.Background(), "p-2")
	assert.True(t, applied)
	assert.Equal(t, LookupNotFound, res.Status)
	assert.False(t, f.Controller().IsComplete(StageRegistration))
}

func TestFlow_SupersededLookupIsCancelledAndDropped(t *testing.T) {
	started := make(chan struct{})
	f := NewFlow(NewController(), fetcherFunc(func(ctx context.Context, id string) Lookup {
		if id == "slow" {
			close(started)
			<-ctx.Done()
			return FetchFailed(ctx.Err())
		}
		return Found("r-fast")
	}))

	type outcome struct {
		res     Lookup
		applied bool
	}
	done := make(chan outcome)
	go func() {
		res, applied := f.SelectPatient(context.Background(), "slow")
		done <- outcome{res, applied}
	}()
	<-started

	res, applied := f.SelectPatient(context.Background(), "fast")
	require.True(t, applied)
	assert.Equal(t, "r-fast", res.RegistrationID)

	slow := <-done
	assert.False(t, slow.applied)
	assert.ErrorIs(t, slow.res.Err, context.Canceled)

	assert.Equal(t, "fast", f.Controller().PatientID())
	assert.Equal(t, LookupFound, f.Controller().Registration().Status)
}

func TestFlow_EmptyPatientSkipsFetch(t *testing.T) {
	called := false
	f := NewFlow(NewController(), fetcherFunc(func(context.Context, string) Lookup {
		called = true
		return NotFound()
	}))
	_, applied := f.SelectPatient(context.Background(), "")
	assert.True(t, applied)
	assert.False(t, called)
	f.Close()
}
