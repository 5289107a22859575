package db

import (
	"reflect"
	"testing"
)

func TestListQuery_NoFilters(t *testing.T) {
	q := NewListQuery("patients", "id, first_name").OrderBy("created_at DESC")
	if got := q.CountSQL(); got != "SELECT COUNT(*) FROM patients" {
		t.Errorf("unexpected count sql %q", got)
	}
	want := "SELECT id, first_name FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	if got := q.DataSQL(); got != want {
		t.Errorf("unexpected data sql\n got %q\nwant %q", got, want)
	}
	if got := q.DataArgs(20, 40); !reflect.DeepEqual(got, []interface{}{20, 40}) {
		t.Errorf("unexpected args %v", got)
	}
}

func TestListQuery_NumbersPlaceholders(t *testing.T) {
	q := NewListQuery("patients", "id").
		Eq("region", "Upper West").
		Eq("district", "").
		Search("ama", "first_name", "last_name").
		Where("created_at >= ?", "2024-01-01")

	wantWhere := " WHERE region = $1 AND (first_name ILIKE $2 OR last_name ILIKE $3) AND created_at >= $4"
	if got := q.CountSQL(); got != "SELECT COUNT(*) FROM patients"+wantWhere {
		t.Errorf("unexpected count sql %q", got)
	}
	if got := q.DataSQL(); got != "SELECT id FROM patients"+wantWhere+" LIMIT $5 OFFSET $6" {
		t.Errorf("unexpected data sql %q", got)
	}
	wantArgs := []interface{}{"Upper West", "%ama%", "%ama%", "2024-01-01"}
	if !reflect.DeepEqual(q.CountArgs(), wantArgs) {
		t.Errorf("unexpected args %v", q.CountArgs())
	}
}

func TestListQuery_SearchEscapesWildcards(t *testing.T) {
	q := NewListQuery("contacts", "id").Search("50%_off", "name")
	if got := q.CountArgs()[0]; got != `%50\%\_off%` {
		t.Errorf("expected escaped pattern, got %v", got)
	}
	if len(NewListQuery("contacts", "id").Search("   ", "name").CountArgs()) != 0 {
		t.Error("blank search should add nothing")
	}
}
