package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mch/mch/internal/domain/kit"
)

type stubRepo struct {
	agg         *Aggregates
	err         error
	from, until time.Time
}

func (s *stubRepo) Aggregates(_ context.Context, from, until time.Time) (*Aggregates, error) {
	s.from, s.until = from, until
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.agg
	return &cp, nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 17, 30, 0, 0, time.UTC) }
	return svc
}

func TestAggregates(t *testing.T) {
	repo := &stubRepo{agg: &Aggregates{
		Patients:        12,
		KitsDistributed: 9,
		KitsByType:      []KitCount{{KitType: kit.NewbornKit, Quantity: 4}, {KitType: kit.MamaKit, Quantity: 5}},
	}}
	a, err := newTestService(repo).Aggregates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !repo.from.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) || !repo.until.Equal(time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected upcoming window %s..%s", repo.from, repo.until)
	}
	if len(a.KitsByType) != len(kit.KitTypes) {
		t.Fatalf("expected every kit type, got %v", a.KitsByType)
	}
	want := []KitCount{
		{KitType: kit.MamaKit, Quantity: 5},
		{KitType: kit.DeliveryKit, Quantity: 0},
		{KitType: kit.NewbornKit, Quantity: 4},
		{KitType: kit.HygieneKit, Quantity: 0},
	}
	for i, kc := range want {
		if a.KitsByType[i] != kc {
			t.Errorf("kits_by_type[%d] = %+v, want %+v", i, a.KitsByType[i], kc)
		}
	}
	if a.PatientsByRegion == nil {
		t.Error("expected empty region list, not nil")
	}
}

func TestAggregates_Error(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := newTestService(&stubRepo{err: boom}).Aggregates(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
