package geo

import (
	"errors"
	"sync"
)

// State is the loading state of a Cascade.
type State int

const (
	StateIdle State = iota
	StateLoadingOptions
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingOptions:
		return "loading_options"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// ErrNotReady is returned by tier setters before the community list has
// finished loading.
var ErrNotReady = errors.New("geo: community options not loaded")

// Cascade holds the selection state of one location picker.
//
// A picker starts Idle, moves to LoadingOptions when the community fetch
// begins and to Ready when FinishLoad delivers the result. An existing
// entity's location is applied with Hydrate; if the load is still in flight
// the chain is held and applied as part of FinishLoad, so option population
// never races the restore.
//
// When a tier changes, its descendants are restored from the hydrated
// original if every tier up to the changed one equals the original, and
// cleared otherwise.
type Cascade struct {
	mu       sync.Mutex
	state    State
	index    *Index
	loadErr  error
	sel      Selection
	original *Selection
	pending  *Selection
}

// NewCascade returns an idle cascade.
func NewCascade() *Cascade {
	return &Cascade{index: NewIndex(nil)}
}

// BeginLoad marks the community list as being fetched.
func (c *Cascade) BeginLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoadingOptions
	c.loadErr = nil
}

// FinishLoad installs the fetched community list. A non-nil loadErr leaves
// every option list empty but is retained for LoadErr. If Hydrate was called
// during the load, the held chain is applied now and any chain error is
// returned.
func (c *Cascade) FinishLoad(records []CommunityRecord, loadErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if loadErr != nil {
		records = nil
	}
	c.index = NewIndex(records)
	c.loadErr = loadErr
	c.state = StateReady

	if c.pending != nil {
		orig := *c.pending
		c.pending = nil
		return c.hydrateLocked(orig)
	}
	c.sel = c.index.ValidPrefix(c.sel)
	return nil
}

// Hydrate applies the stored location of an entity being edited. The valid
// prefix of orig is selected in one step; a *ChainError is returned when
// orig does not form a complete valid chain against the loaded list.
func (c *Cascade) Hydrate(orig Selection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		o := orig
		c.pending = &o
		return nil
	}
	return c.hydrateLocked(orig)
}

func (c *Cascade) hydrateLocked(orig Selection) error {
	o := orig
	c.original = &o
	c.sel = c.index.ValidPrefix(orig)
	if c.sel != orig {
		return c.index.Validate(orig)
	}
	return nil
}

// Set selects v at tier t. Setting an empty value clears the tier. Setting
// the value already selected is a no-op.
func (c *Cascade) Set(t Tier, v string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return ErrNotReady
	}
	if v != "" && !c.index.Contains(t, c.sel, v) {
		return &ChainError{Tier: t, Value: v}
	}
	if c.sel.Value(t) == v {
		return nil
	}

	c.sel.set(t, v)
	if c.matchesOriginalThrough(t) {
		for _, d := range Tiers {
			if d > t {
				c.sel.set(d, c.original.Value(d))
			}
		}
		c.sel = c.index.ValidPrefix(c.sel)
		return nil
	}
	c.sel = c.sel.Truncate(t)
	return nil
}

func (c *Cascade) matchesOriginalThrough(t Tier) bool {
	if c.original == nil || c.sel.Value(t) == "" {
		return false
	}
	for _, tier := range Tiers {
		if tier > t {
			break
		}
		if c.sel.Value(tier) != c.original.Value(tier) {
			return false
		}
	}
	return true
}

func (c *Cascade) SetRegion(v string) error      { return c.Set(TierRegion, v) }
func (c *Cascade) SetDistrict(v string) error    { return c.Set(TierDistrict, v) }
func (c *Cascade) SetSubdistrict(v string) error { return c.Set(TierSubdistrict, v) }
func (c *Cascade) SetCommunity(v string) error   { return c.Set(TierCommunity, v) }

// Selection returns the current selection.
func (c *Cascade) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Original returns the hydrated selection, if any.
func (c *Cascade) Original() (Selection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.original == nil {
		return Selection{}, false
	}
	return *c.original, true
}

// Options returns the option lists for the current selection. Before the
// load finishes every list is empty.
func (c *Cascade) Options() OptionSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Options(c.sel)
}

// State returns the loading state.
func (c *Cascade) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LoadErr returns the error of the last load, distinguishing a failed fetch
// from an empty community list.
func (c *Cascade) LoadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Reset returns the cascade to Idle with nothing selected.
func (c *Cascade) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.index = NewIndex(nil)
	c.loadErr = nil
	c.sel = Selection{}
	c.original = nil
	c.pending = nil
}
