package validate

import (
	"strings"
	"testing"

	"github.com/mch/mch/pkg/permission"
)

type sample struct {
	Name     string `json:"name" validate:"required,max=5"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	UserType string `json:"user_type" validate:"required,user_type"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Born     string `json:"born" validate:"omitempty,date"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(&sample{Name: "Ama", UserType: permission.Midwife, Quantity: 1, Born: "1990-04-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_FieldsUseJSONNames(t *testing.T) {
	err := Struct(&sample{Name: "too long", Email: "nope", UserType: "pilot", Born: "01/04/1990"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := err.(*Error).Fields
	for _, name := range []string{"name", "email", "user_type", "quantity", "born"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("expected failure on %s, got %v", name, fields)
		}
	}
	if fields["born"] != "must be a date (YYYY-MM-DD)" {
		t.Errorf("unexpected date message: %s", fields["born"])
	}
}

func TestError_MessageIsSorted(t *testing.T) {
	e := &Error{Fields: map[string]string{"b": "is required", "a": "is required"}}
	if got := e.Error(); got != "a is required; b is required" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestStruct_Required(t *testing.T) {
	err := Struct(&sample{Quantity: 1})
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("expected name is required, got %v", err)
	}
}
