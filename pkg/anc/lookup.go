package anc

import (
	"context"
	"fmt"
	"sync"
)

// LookupStatus is the outcome of fetching a patient's ANC registration.
type LookupStatus int

const (
	// LookupPending means no lookup has completed yet.
	LookupPending LookupStatus = iota
	LookupFound
	LookupNotFound
	LookupFetchFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupPending:
		return "pending"
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupFetchFailed:
		return "fetch_failed"
	}
	return fmt.Sprintf("LookupStatus(%d)", int(s))
}

// Lookup is a tagged registration lookup result. A missing registration and
// a failed request are different outcomes.
type Lookup struct {
	Status         LookupStatus
	RegistrationID string
	Err            error
}

func Found(registrationID string) Lookup {
	return Lookup{Status: LookupFound, RegistrationID: registrationID}
}

func NotFound() Lookup {
	return Lookup{Status: LookupNotFound}
}

func FetchFailed(err error) Lookup {
	return Lookup{Status: LookupFetchFailed, Err: err}
}

// RegistrationFetcher loads the ANC registration of a patient. Implementations
// must honor ctx cancellation.
type RegistrationFetcher interface {
	FetchRegistration(ctx context.Context, patientID string) Lookup
}

// Flow couples a Controller with a RegistrationFetcher. Selecting a new
// patient cancels any lookup still running for the previous one, and a
// superseded result is never applied.
type Flow struct {
	ctrl    *Controller
	fetcher RegistrationFetcher

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewFlow returns a Flow driving ctrl.
func NewFlow(ctrl *Controller, fetcher RegistrationFetcher) *Flow {
	return &Flow{ctrl: ctrl, fetcher: fetcher}
}

// Controller returns the underlying controller.
func (f *Flow) Controller() *Controller {
	return f.ctrl
}

// SelectPatient switches to patientID and looks up its registration. The
// returned bool is false when a later SelectPatient superseded this one, in
// which case the controller was left untouched by this call's result.
func (f *Flow) SelectPatient(ctx context.Context, patientID string) (Lookup, bool) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	f.seq++
	seq := f.seq
	f.cancel = cancel
	f.ctrl.SetPatient(patientID)
	f.mu.Unlock()

	if patientID == "" {
		f.finish(seq, cancel)
		return Lookup{}, true
	}

	res := f.fetcher.FetchRegistration(ctx, patientID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		return res, false
	}
	f.cancel = nil
	cancel()
	f.ctrl.SetRegistration(res)
	return res, true
}

func (f *Flow) finish(seq uint64, cancel context.CancelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seq == f.seq {
		f.cancel = nil
	}
	cancel()
}

// Close cancels any lookup in flight.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.seq++
}
