package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/mch/mch/internal/domain/kit"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Aggregates returns the dashboard figures. Every kit type is listed,
// in display order, even when none were handed out.
func (s *Service) Aggregates(ctx context.Context) (*Aggregates, error) {
	n := s.now().UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	a, err := s.repo.Aggregates(ctx, today, today.AddDate(0, 0, UpcomingWindowDays))
	if err != nil {
		return nil, fmt.Errorf("dashboard aggregates: %w", err)
	}

	byType := make(map[string]int, len(a.KitsByType))
	for _, kc := range a.KitsByType {
		byType[kc.KitType] = kc.Quantity
	}
	kits := make([]KitCount, 0, len(kit.KitTypes))
	for _, t := range kit.KitTypes {
		kits = append(kits, KitCount{KitType: t, Quantity: byType[t]})
	}
	a.KitsByType = kits
	if a.PatientsByRegion == nil {
		a.PatientsByRegion = []RegionCount{}
	}
	return a, nil
}
