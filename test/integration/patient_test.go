//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mch/mch/internal/domain/patient"
)

func TestPatientCRUD(t *testing.T) {
	schema := newSchema(t, "patient")

	inSchema(t, schema, func(ctx context.Context) error {
		repo := patient.NewRepoPG(globalDB.Pool)
		p := createPatient(t, ctx, "Ama", "Owusu", testCommunities[0])
		if p.ID == uuid.Nil {
			t.Fatal("expected id after create")
		}

		got, err := repo.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.FirstName != "Ama" || got.Community != "Atonsu" {
			t.Errorf("unexpected patient %+v", got)
		}

		got.Phone = ptrStr("0244000000")
		got.Community = "Ahinsan"
		if err := repo.Update(ctx, got); err != nil {
			t.Fatalf("Update: %v", err)
		}
		again, err := repo.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetByID after update: %v", err)
		}
		if again.Phone == nil || *again.Phone != "0244000000" || again.Community != "Ahinsan" {
			t.Errorf("update not persisted: %+v", again)
		}

		if err := repo.Delete(ctx, p.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, pgx.ErrNoRows) {
			t.Errorf("expected ErrNoRows after delete, got %v", err)
		}
		return nil
	})
}

func TestPatientList_Filters(t *testing.T) {
	schema := newSchema(t, "patient_list")

	inSchema(t, schema, func(ctx context.Context) error {
		createPatient(t, ctx, "Ama", "Owusu", testCommunities[0])
		createPatient(t, ctx, "Akosua", "Mensah", testCommunities[1])
		createPatient(t, ctx, "Yawa", "Agbeko", testCommunities[2])
		repo := patient.NewRepoPG(globalDB.Pool)

		tests := []struct {
			name   string
			filter patient.Filter
			want   int
		}{
			{"all", patient.Filter{}, 3},
			{"region", patient.Filter{Region: "Ashanti"}, 2},
			{"community", patient.Filter{Community: "Bankoe"}, 1},
			{"search", patient.Filter{Search: "mens"}, 1},
			{"no match", patient.Filter{Region: "Northern"}, 0},
		}
		for _, tt := range tests {
			items, total, err := repo.List(ctx, tt.filter, 10, 0)
			if err != nil {
				t.Fatalf("%s: List: %v", tt.name, err)
			}
			if total != tt.want || len(items) != tt.want {
				t.Errorf("%s: expected %d, got total=%d len=%d", tt.name, tt.want, total, len(items))
			}
		}

		items, total, err := repo.List(ctx, patient.Filter{}, 2, 2)
		if err != nil {
			t.Fatalf("paged List: %v", err)
		}
		if total != 3 || len(items) != 1 {
			t.Errorf("expected page of 1 out of 3, got total=%d len=%d", total, len(items))
		}
		return nil
	})
}
