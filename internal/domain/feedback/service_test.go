package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/validate"
)

type mockRepo struct {
	items []*Feedback
}

func (m *mockRepo) Create(_ context.Context, f *Feedback) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	m.items = append(m.items, f)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Feedback, int, error) {
	var out []*Feedback
	for _, it := range m.items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		out = append(out, it)
	}
	return out, len(out), nil
}

func TestSubmit(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())
	actor := uuid.New()
	ctx := auth.WithIdentity(context.Background(), &auth.Identity{AccountID: actor.String()})

	f := &Feedback{Subject: " Sync fails ", Message: "Visits do not upload on 2G."}
	if err := svc.Submit(ctx, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Category != "general" {
		t.Errorf("expected default category general, got %q", f.Category)
	}
	if f.Subject != "Sync fails" {
		t.Errorf("expected trimmed subject, got %q", f.Subject)
	}
	if f.AccountID == nil || *f.AccountID != actor {
		t.Errorf("expected account %s, got %v", actor, f.AccountID)
	}
}

func TestSubmit_Rejects(t *testing.T) {
	svc := NewService(&mockRepo{}, zerolog.Nop())
	tests := []struct {
		name string
		f    *Feedback
	}{
		{"no subject", &Feedback{Message: "hello"}},
		{"blank message", &Feedback{Subject: "hi", Message: "   "}},
		{"bad category", &Feedback{Subject: "hi", Message: "hello", Category: "praise"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Submit(context.Background(), tt.f); !validate.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
