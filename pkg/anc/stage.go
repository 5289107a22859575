// Package anc drives the three-stage antenatal care flow: person details,
// ANC registration, then ANC visits.
package anc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Stage is one step of the ANC flow. Stages are totally ordered.
type Stage int

const (
	StagePersonDetails Stage = iota
	StageRegistration
	StageVisits
)

// Stages lists every stage in order.
var Stages = []Stage{StagePersonDetails, StageRegistration, StageVisits}

func (s Stage) String() string {
	switch s {
	case StagePersonDetails:
		return "PERSON_DETAILS"
	case StageRegistration:
		return "ANC_REGISTRATION"
	case StageVisits:
		return "ANC_VISITS"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(b []byte) error {
	parsed, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStage parses the String form of a stage.
func ParseStage(v string) (Stage, error) {
	for _, s := range Stages {
		if s.String() == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown ANC stage %q", v)
}

func (s Stage) next() Stage {
	if s >= StageVisits {
		return StageVisits
	}
	return s + 1
}

var (
	ErrStageInaccessible = errors.New("anc: stage is not accessible")
	ErrUnknownStage      = errors.New("anc: unknown stage")
)

// View describes what the current stage should render. Placeholder is set
// when the stage shows guidance instead of its form.
type View struct {
	Stage          Stage  `json:"stage"`
	PatientID      string `json:"patient_id,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
	Placeholder    string `json:"placeholder,omitempty"`
}

// Progress is a point-in-time summary of a Controller.
type Progress struct {
	Current    Stage          `json:"current"`
	Completed  []Stage        `json:"completed"`
	Accessible map[Stage]bool `json:"accessible"`
	View       View           `json:"view"`
}

// Controller tracks the current stage, the completed set, and the
// registration lookup for one patient.
//
// PERSON_DETAILS is always accessible. ANC_REGISTRATION and ANC_VISITS are
// accessible whenever a patient id is present, whether or not earlier
// stages are complete.
type Controller struct {
	mu           sync.Mutex
	current      Stage
	completed    map[Stage]bool
	patientID    string
	registration Lookup
}

// NewController returns a controller positioned on PERSON_DETAILS.
func NewController() *Controller {
	return &Controller{
		current:   StagePersonDetails,
		completed: make(map[Stage]bool),
	}
}

// SetPatient switches the controller to patientID. Switching to a different
// patient forgets the completed set and the registration lookup.
func (c *Controller) SetPatient(patientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if patientID == c.patientID {
		return
	}
	c.patientID = patientID
	c.completed = make(map[Stage]bool)
	c.registration = Lookup{}
	if !c.accessibleLocked(c.current) {
		c.current = StagePersonDetails
	}
}

// PatientID returns the current patient id, empty when none is selected.
func (c *Controller) PatientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patientID
}

// Current returns the stage being shown.
func (c *Controller) Current() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Accessible reports whether s may be navigated to.
func (c *Controller) Accessible(s Stage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessibleLocked(s)
}

func (c *Controller) accessibleLocked(s Stage) bool {
	switch s {
	case StagePersonDetails:
		return true
	case StageRegistration, StageVisits:
		return c.patientID != ""
	}
	return false
}

// IsComplete reports whether s has been completed.
func (c *Controller) IsComplete(s Stage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[s]
}

// Completed returns the completed stages in order.
func (c *Controller) Completed() []Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completedLocked()
}

func (c *Controller) completedLocked() []Stage {
	out := make([]Stage, 0, len(c.completed))
	for s := range c.completed {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GoTo navigates to s.
func (c *Controller) GoTo(s Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s < StagePersonDetails || s > StageVisits {
		return ErrUnknownStage
	}
	if !c.accessibleLocked(s) {
		return fmt.Errorf("%w: %s requires a patient", ErrStageInaccessible, s)
	}
	c.current = s
	return nil
}

// Complete marks s complete after a successful submission and moves to the
// following stage. ANC_VISITS stays on itself.
func (c *Controller) Complete(s Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s < StagePersonDetails || s > StageVisits {
		return ErrUnknownStage
	}
	if s == StagePersonDetails && c.patientID == "" {
		return fmt.Errorf("%w: person details must be saved before completing", ErrStageInaccessible)
	}
	if !c.accessibleLocked(s) {
		return fmt.Errorf("%w: %s requires a patient", ErrStageInaccessible, s)
	}
	c.completed[s] = true
	c.current = s.next()
	return nil
}

// SetRegistration records the outcome of a registration lookup. A found
// registration marks ANC_REGISTRATION complete without moving the current
// stage.
func (c *Controller) SetRegistration(l Lookup) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registration = l
	if l.Status == LookupFound {
		c.completed[StageRegistration] = true
	}
}

// Registration returns the last registration lookup.
func (c *Controller) Registration() Lookup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registration
}

// View returns what the current stage should render.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	v := View{Stage: c.current, PatientID: c.patientID}
	if c.registration.Status == LookupFound {
		v.RegistrationID = c.registration.RegistrationID
	}
	if c.current != StageVisits {
		return v
	}
	switch c.registration.Status {
	case LookupPending:
		v.Placeholder = "Loading ANC registration"
	case LookupNotFound:
		v.Placeholder = "ANC registration required before visits can be recorded"
	case LookupFetchFailed:
		v.Placeholder = fmt.Sprintf("Could not load ANC registration: %v", c.registration.Err)
	}
	return v
}

// Snapshot returns the current progress.
func (c *Controller) Snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	accessible := make(map[Stage]bool, len(Stages))
	for _, s := range Stages {
		accessible[s] = c.accessibleLocked(s)
	}
	return Progress{
		Current:    c.current,
		Completed:  c.completedLocked(),
		Accessible: accessible,
		View:       c.viewLocked(),
	}
}
