//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/mch/mch/internal/domain/community"
	"github.com/mch/mch/internal/domain/patient"
	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/migrations"
)

func TestMigrations_AllApplied(t *testing.T) {
	schema := newSchema(t, "migrate")

	statuses, err := db.NewMigrator(globalDB.Pool, migrations.FS).Status(context.Background(), schema)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) == 0 {
		t.Fatal("expected migrations")
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Errorf("migration %d not applied", s.Version)
		}
	}

	// Running again is a no-op.
	n, err := db.EnsureSchema(context.Background(), globalDB.Pool, schema, migrations.FS)
	if err != nil {
		t.Fatalf("re-run: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no migrations on re-run, got %d", n)
	}
}

func TestSchemas_AreIsolated(t *testing.T) {
	a := newSchema(t, "iso_a")
	b := newSchema(t, "iso_b")

	inSchema(t, a, func(ctx context.Context) error {
		seedCommunities(t, ctx)
		createPatient(t, ctx, "Ama", "Owusu", testCommunities[0])
		return nil
	})

	inSchema(t, b, func(ctx context.Context) error {
		_, total, err := patient.NewRepoPG(globalDB.Pool).List(ctx, patient.Filter{}, 10, 0)
		if err != nil {
			return err
		}
		if total != 0 {
			t.Errorf("expected schema %s to be empty, got %d patients", b, total)
		}
		all, err := community.NewRepoPG(globalDB.Pool).ListAll(ctx)
		if err != nil {
			return err
		}
		if len(all) != 0 {
			t.Errorf("expected no communities in %s, got %d", b, len(all))
		}
		return nil
	})
}

func TestCommunityImport_SkipsExisting(t *testing.T) {
	schema := newSchema(t, "import")

	inSchema(t, schema, func(ctx context.Context) error {
		repo := community.NewRepoPG(globalDB.Pool)
		n, err := repo.Import(ctx, testCommunities)
		if err != nil {
			return err
		}
		if n != len(testCommunities) {
			t.Errorf("expected %d inserted, got %d", len(testCommunities), n)
		}
		n, err = repo.Import(ctx, testCommunities)
		if err != nil {
			return err
		}
		if n != 0 {
			t.Errorf("expected re-import to add nothing, got %d", n)
		}
		return nil
	})
}
