// Package geo resolves the region → district → subdistrict → community
// hierarchy from a flat list of community records.
//
// Option lists for each tier are derived from the records whose shallower
// tiers match the current selection. Values are compared case-sensitively,
// deduplicated, and sorted lexicographically. Empty strings are never
// offered as options.
package geo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tier identifies one level of the location hierarchy.
type Tier int

const (
	TierRegion Tier = iota
	TierDistrict
	TierSubdistrict
	TierCommunity
)

// Tiers lists every tier from shallowest to deepest.
var Tiers = []Tier{TierRegion, TierDistrict, TierSubdistrict, TierCommunity}

func (t Tier) String() string {
	switch t {
	case TierRegion:
		return "region"
	case TierDistrict:
		return "district"
	case TierSubdistrict:
		return "subdistrict"
	case TierCommunity:
		return "community"
	default:
		return "tier(" + strconv.Itoa(int(t)) + ")"
	}
}

// CommunityRecord is one row of the community list.
type CommunityRecord struct {
	Region        string `json:"region"`
	District      string `json:"district"`
	Subdistrict   string `json:"subdistrict"`
	CommunityName string `json:"community_name"`
}

func (r CommunityRecord) value(t Tier) string {
	switch t {
	case TierRegion:
		return r.Region
	case TierDistrict:
		return r.District
	case TierSubdistrict:
		return r.Subdistrict
	case TierCommunity:
		return r.CommunityName
	}
	return ""
}

// Selection is a partial pick across the four tiers.
type Selection struct {
	Region      string `json:"region,omitempty"`
	District    string `json:"district,omitempty"`
	Subdistrict string `json:"subdistrict,omitempty"`
	Community   string `json:"community,omitempty"`
}

// Value returns the selected value at tier t.
func (s Selection) Value(t Tier) string {
	switch t {
	case TierRegion:
		return s.Region
	case TierDistrict:
		return s.District
	case TierSubdistrict:
		return s.Subdistrict
	case TierCommunity:
		return s.Community
	}
	return ""
}

func (s *Selection) set(t Tier, v string) {
	switch t {
	case TierRegion:
		s.Region = v
	case TierDistrict:
		s.District = v
	case TierSubdistrict:
		s.Subdistrict = v
	case TierCommunity:
		s.Community = v
	}
}

// IsEmpty reports whether no tier is selected.
func (s Selection) IsEmpty() bool {
	return s == Selection{}
}

// Truncate keeps tiers up to and including t and clears the deeper ones.
func (s Selection) Truncate(t Tier) Selection {
	out := Selection{}
	for _, tier := range Tiers {
		if tier > t {
			break
		}
		out.set(tier, s.Value(tier))
	}
	return out
}

// OptionSet holds the option list of every tier for one selection.
type OptionSet struct {
	Regions      []string `json:"regions"`
	Districts    []string `json:"districts"`
	Subdistricts []string `json:"subdistricts"`
	Communities  []string `json:"communities"`
}

// For returns the option list of tier t.
func (o OptionSet) For(t Tier) []string {
	switch t {
	case TierRegion:
		return o.Regions
	case TierDistrict:
		return o.Districts
	case TierSubdistrict:
		return o.Subdistricts
	case TierCommunity:
		return o.Communities
	}
	return nil
}

// ChainError reports a selected value that is not among the options implied
// by the shallower tiers.
type ChainError struct {
	Tier  Tier
	Value string
}

func (e *ChainError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s is required", e.Tier)
	}
	return fmt.Sprintf("%s %q is not valid for the selected location", e.Tier, e.Value)
}

// Index is a prebuilt lookup from each ancestor path to the sorted options of
// the next tier.
type Index struct {
	children map[string][]string
	records  int
}

// NewIndex builds an index over records.
func NewIndex(records []CommunityRecord) *Index {
	sets := make(map[string]map[string]struct{})
	for _, r := range records {
		var sel Selection
		for _, t := range Tiers {
			v := r.value(t)
			if v == "" {
				break
			}
			key := pathKey(t, sel)
			if sets[key] == nil {
				sets[key] = make(map[string]struct{})
			}
			sets[key][v] = struct{}{}
			sel.set(t, v)
		}
	}

	children := make(map[string][]string, len(sets))
	for key, set := range sets {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		children[key] = values
	}
	return &Index{children: children, records: len(records)}
}

// Len returns the number of records the index was built from.
func (ix *Index) Len() int { return ix.records }

// Options returns the option lists implied by sel. A tier whose parent is
// unselected gets an empty list.
func (ix *Index) Options(sel Selection) OptionSet {
	return OptionSet{
		Regions:      ix.optionsFor(TierRegion, sel),
		Districts:    ix.optionsFor(TierDistrict, sel),
		Subdistricts: ix.optionsFor(TierSubdistrict, sel),
		Communities:  ix.optionsFor(TierCommunity, sel),
	}
}

func (ix *Index) optionsFor(t Tier, sel Selection) []string {
	for _, parent := range Tiers {
		if parent >= t {
			break
		}
		if sel.Value(parent) == "" {
			return []string{}
		}
	}
	values := ix.children[pathKey(t, sel)]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Contains reports whether v is an option at tier t given sel's shallower
// tiers.
func (ix *Index) Contains(t Tier, sel Selection, v string) bool {
	if v == "" {
		return false
	}
	values := ix.children[pathKey(t, sel)]
	i := sort.SearchStrings(values, v)
	return i < len(values) && values[i] == v
}

// Validate checks that every non-empty tier of sel is drawn from the option
// set implied by the shallower tiers, and that no tier is set below an empty
// one.
func (ix *Index) Validate(sel Selection) error {
	gap := false
	for _, t := range Tiers {
		v := sel.Value(t)
		if v == "" {
			gap = true
			continue
		}
		if gap {
			return &ChainError{Tier: t - 1}
		}
		if !ix.Contains(t, sel, v) {
			return &ChainError{Tier: t, Value: v}
		}
	}
	return nil
}

// ValidPrefix returns the longest leading part of sel that forms a valid
// chain.
func (ix *Index) ValidPrefix(sel Selection) Selection {
	out := Selection{}
	for _, t := range Tiers {
		v := sel.Value(t)
		if v == "" || !ix.Contains(t, out, v) {
			break
		}
		out.set(t, v)
	}
	return out
}

// Options derives the option lists for sel directly from records.
func Options(records []CommunityRecord, sel Selection) OptionSet {
	return NewIndex(records).Options(sel)
}

// Validate checks sel against records. See Index.Validate.
func Validate(records []CommunityRecord, sel Selection) error {
	return NewIndex(records).Validate(sel)
}

func pathKey(t Tier, sel Selection) string {
	parts := make([]string, 0, int(t)+1)
	parts = append(parts, strconv.Itoa(int(t)))
	for _, parent := range Tiers {
		if parent >= t {
			break
		}
		parts = append(parts, sel.Value(parent))
	}
	return strings.Join(parts, "\x1f")
}
