package db

import (
	"context"
	"testing"
)

func TestValidSchema(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"public", true},
		{"mch", true},
		{"mch_test_01", true},
		{"_private", true},
		{"1abc", false},
		{"a-b", false},
		{"a.b", false},
		{"a b", false},
		{"drop;table", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidSchema(tt.input); got != tt.valid {
			t.Errorf("ValidSchema(%q) = %v, want %v", tt.input, got, tt.valid)
		}
	}
}

func TestEnsureSchema_InvalidNames(t *testing.T) {
	for _, name := range []string{"with-dash", "with.dot", "sp ace", "drop;table"} {
		if _, err := EnsureSchema(context.Background(), nil, name, nil); err == nil {
			t.Errorf("expected error for invalid schema %q", name)
		}
	}
}

func TestConnFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBConnKey, "not-a-conn")
	if conn := ConnFromContext(ctx); conn != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestConnFromContext_Missing(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil for empty context")
	}
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil when context value is wrong type")
	}
}
