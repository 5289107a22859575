package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

type mockRepo struct {
	contacts map[uuid.UUID]*Contact
}

func newMockRepo() *mockRepo {
	return &mockRepo{contacts: make(map[uuid.UUID]*Contact)}
}

func (m *mockRepo) Create(_ context.Context, c *Contact) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.contacts[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockRepo) Update(_ context.Context, c *Contact) error {
	if _, ok := m.contacts[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.contacts[c.ID] = c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.contacts, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Contact, int, error) {
	var out []*Contact
	for _, c := range m.contacts {
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

type indexLocations struct{ ix *geo.Index }

func (l indexLocations) ValidateLocation(_ context.Context, sel geo.Selection, _ bool) error {
	return l.ix.Validate(sel)
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	ix := geo.NewIndex([]geo.CommunityRecord{
		{Region: "Upper West", District: "Wa West", Subdistrict: "Jirapa", CommunityName: "Tizza"},
		{Region: "Volta", District: "Ho", Subdistrict: "Ho Central", CommunityName: "Bankoe"},
	})
	return NewService(repo, indexLocations{ix}), repo
}

func strPtr(s string) *string { return &s }

func TestCreate_PartialLocation(t *testing.T) {
	svc, _ := newTestService(t)
	c := &Contact{Name: " Ho Municipal Hospital ", Region: strPtr("Volta"), District: strPtr("Ho"), Phone: strPtr(" ")}
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Ho Municipal Hospital" {
		t.Errorf("expected trimmed name, got %q", c.Name)
	}
	if c.Phone != nil {
		t.Error("expected blank phone to be dropped")
	}
}

func TestCreate_NoLocation(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Create(context.Background(), &Contact{Name: "Regional Health Directorate"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_Rejects(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Create(context.Background(), &Contact{Name: "Clinic", Region: strPtr("Volta"), District: strPtr("Wa West")})
	var ce *geo.ChainError
	if !errors.As(err, &ce) {
		t.Errorf("expected chain error, got %v", err)
	}
	if err := svc.Create(context.Background(), &Contact{Name: "Clinic", Email: strPtr("not-an-email")}); !validate.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := svc.Create(context.Background(), &Contact{}); !validate.IsValidation(err) {
		t.Errorf("expected missing name to fail, got %v", err)
	}
}
