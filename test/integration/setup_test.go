//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/domain/community"
	"github.com/mch/mch/internal/domain/patient"
	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/migrations"
	"github.com/mch/mch/pkg/geo"
)

type testDB struct {
	Pool *pgxpool.Pool
}

var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr, cleanup, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres: %v\n", err)
		os.Exit(1)
	}
	pool, err := db.NewPool(ctx, connStr, 10, 1)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}

	globalDB = &testDB{Pool: pool}
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

// newSchema migrates a fresh schema and drops it when the test ends.
func newSchema(t *testing.T, prefix string) string {
	t.Helper()
	ctx := context.Background()
	schema := fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.New().String()[:8], "-", ""))
	if _, err := db.EnsureSchema(ctx, globalDB.Pool, schema, migrations.FS); err != nil {
		t.Fatalf("ensure schema %s: %v", schema, err)
	}
	t.Cleanup(func() {
		if _, err := globalDB.Pool.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Logf("warning: drop schema %s: %v", schema, err)
		}
	})
	return schema
}

// inSchema runs fn with a connection bound to schema on ctx.
func inSchema(t *testing.T, schema string, fn func(ctx context.Context) error) {
	t.Helper()
	ctx, release, err := db.BindSchema(context.Background(), globalDB.Pool, schema)
	if err != nil {
		t.Fatalf("bind schema: %v", err)
	}
	defer release()
	if err := fn(ctx); err != nil {
		t.Fatal(err)
	}
}

var testCommunities = []geo.CommunityRecord{
	{Region: "Ashanti", District: "Kumasi Metro", Subdistrict: "Asokwa", CommunityName: "Atonsu"},
	{Region: "Ashanti", District: "Kumasi Metro", Subdistrict: "Asokwa", CommunityName: "Ahinsan"},
	{Region: "Volta", District: "Ho Municipal", Subdistrict: "Ho Central", CommunityName: "Bankoe"},
}

func seedCommunities(t *testing.T, ctx context.Context) {
	t.Helper()
	if _, err := community.NewRepoPG(globalDB.Pool).Import(ctx, testCommunities); err != nil {
		t.Fatalf("import communities: %v", err)
	}
}

func createPatient(t *testing.T, ctx context.Context, first, last string, loc geo.CommunityRecord) *patient.Patient {
	t.Helper()
	p := &patient.Patient{
		FirstName:   first,
		LastName:    last,
		Region:      loc.Region,
		District:    loc.District,
		Subdistrict: loc.Subdistrict,
		Community:   loc.CommunityName,
	}
	if err := patient.NewRepoPG(globalDB.Pool).Create(ctx, p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func ptrStr(s string) *string { return &s }

func ptrInt(i int) *int { return &i }
