package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/validate"
)

type stubRepo struct {
	rows        []Row
	from, until time.Time
}

func (s *stubRepo) DataCapture(_ context.Context, from, until time.Time) ([]Row, error) {
	s.from, s.until = from, until
	return s.rows, nil
}

func sampleRows() []Row {
	return []Row{
		{AccountID: uuid.New(), Username: "abena", FullName: "Abena Mensah", UserType: "midwife", Patients: 4, Registrations: 3, Visits: 9, KitLogs: 2},
		{AccountID: uuid.New(), Username: "kwame", FullName: "Kwame Asante", UserType: "community_health_worker", Patients: 1, KitLogs: 5},
	}
}

func TestDataCapture_Window(t *testing.T) {
	repo := &stubRepo{rows: sampleRows()}
	svc := NewService(repo)

	rep, err := svc.DataCapture(context.Background(), Query{From: "2024-06-01", To: "2024-06-30"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.until.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected the last day to be included, got until %s", repo.until)
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rep.Rows))
	}
	tot := rep.Totals()
	if tot.Patients != 5 || tot.KitLogs != 7 || tot.Total() != 24 {
		t.Errorf("unexpected totals %+v", tot)
	}
}

func TestDataCapture_SingleDay(t *testing.T) {
	repo := &stubRepo{}
	rep, err := NewService(repo).DataCapture(context.Background(), Query{From: "2024-06-01", To: "2024-06-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Rows == nil {
		t.Error("expected empty rows, not nil")
	}
	if repo.until.Sub(repo.from) != 24*time.Hour {
		t.Errorf("expected a one-day window, got %s", repo.until.Sub(repo.from))
	}
}

func TestDataCapture_Rejects(t *testing.T) {
	svc := NewService(&stubRepo{})
	tests := []struct {
		name string
		q    Query
		kind apierr.Kind
	}{
		{"missing from", Query{To: "2024-06-01"}, apierr.KindInvalid},
		{"bad date", Query{From: "01/06/2024", To: "2024-06-30"}, apierr.KindInvalid},
		{"reversed", Query{From: "2024-06-30", To: "2024-06-01"}, apierr.KindInvalid},
		{"too long", Query{From: "2023-01-01", To: "2024-06-30"}, apierr.KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DataCapture(context.Background(), tt.q)
			if err == nil {
				t.Fatal("expected error")
			}
			if apierr.Classify(err) != tt.kind {
				t.Errorf("expected kind %v, got %v (%v)", tt.kind, apierr.Classify(err), err)
			}
		})
	}
	if _, err := svc.DataCapture(context.Background(), Query{}); !validate.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestXLSX(t *testing.T) {
	rep := &DataCapture{
		From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Rows: sampleRows(),
	}
	data, err := rep.XLSX()
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(dataSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// title, blank, header, two accounts, totals
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d: %v", len(rows), rows)
	}
	if rows[2][0] != "Username" || rows[3][0] != "abena" {
		t.Errorf("unexpected layout %v", rows)
	}
	if last := rows[5]; last[0] != "Total" || last[7] != "24" {
		t.Errorf("unexpected totals row %v", last)
	}
	if rep.FileName() != "data-capture_2024-06-01_2024-06-30.xlsx" {
		t.Errorf("unexpected file name %s", rep.FileName())
	}
}
