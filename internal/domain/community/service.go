package community

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

const indexCacheKey = "index"

// ErrIncompleteLocation is returned when a location that must name a
// community stops at a shallower tier.
var ErrIncompleteLocation = &apierr.Error{
	Kind: apierr.KindInvalid,
	Msg:  "region, district, subdistrict and community are all required",
}

// Service owns the community list. The list and its tier index are cached
// in memory and rebuilt after any write or once the TTL lapses.
type Service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{repo: repo, cache: cache.New(ttl, 2*ttl)}
}

type snapshot struct {
	items []*Community
	index *geo.Index
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	if v, ok := s.cache.Get(indexCacheKey); ok {
		return v.(*snapshot), nil
	}
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	records := make([]geo.CommunityRecord, len(items))
	for i, c := range items {
		records[i] = c.Record()
	}
	snap := &snapshot{items: items, index: geo.NewIndex(records)}
	s.cache.SetDefault(indexCacheKey, snap)
	return snap, nil
}

func (s *Service) invalidate() {
	s.cache.Delete(indexCacheKey)
}

func (s *Service) List(ctx context.Context) ([]*Community, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.items, nil
}

// Options answers one cascade query: the option list of every tier for sel.
// Tiers below the first invalid pick come back empty.
func (s *Service) Options(ctx context.Context, sel geo.Selection) (geo.OptionSet, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return geo.OptionSet{}, err
	}
	return snap.index.Options(snap.index.ValidPrefix(sel)), nil
}

// ValidateLocation checks that sel is a consistent chain. With complete set,
// all four tiers must be filled in.
func (s *Service) ValidateLocation(ctx context.Context, sel geo.Selection, complete bool) error {
	if complete && sel.Community == "" {
		return ErrIncompleteLocation
	}
	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	return snap.index.Validate(sel)
}

func normalize(c *Community) {
	c.Region = strings.TrimSpace(c.Region)
	c.District = strings.TrimSpace(c.District)
	c.Subdistrict = strings.TrimSpace(c.Subdistrict)
	c.CommunityName = strings.TrimSpace(c.CommunityName)
}

func (s *Service) Create(ctx context.Context, c *Community) error {
	normalize(c)
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Community, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Community) error {
	normalize(c)
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Import adds records that are not already present.
func (s *Service) Import(ctx context.Context, records []geo.CommunityRecord) (int, error) {
	n, err := s.repo.Import(ctx, records)
	if err != nil {
		return 0, err
	}
	s.invalidate()
	return n, nil
}

// ParseCSV reads community rows from r. The first row must be a header
// naming region, district, subdistrict and community_name in any order;
// other columns are ignored. Rows with an empty tier are rejected.
func ParseCSV(r io.Reader) ([]geo.CommunityRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	want := []string{"region", "district", "subdistrict", "community_name"}
	for _, name := range want {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []geo.CommunityRecord
	seen := map[geo.CommunityRecord]bool{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			i := cols[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		rec := geo.CommunityRecord{
			Region:        field("region"),
			District:      field("district"),
			Subdistrict:   field("subdistrict"),
			CommunityName: field("community_name"),
		}
		if rec == (geo.CommunityRecord{}) {
			continue
		}
		if rec.Region == "" || rec.District == "" || rec.Subdistrict == "" || rec.CommunityName == "" {
			return nil, fmt.Errorf("line %d: every tier is required", line)
		}
		if seen[rec] {
			continue
		}
		seen[rec] = true
		out = append(out, rec)
	}
	return out, nil
}
