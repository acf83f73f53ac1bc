package memory

import (
	"context"
	"testing"

	"conto/internal/core"
)

func TestMirrorAppendAndList(t *testing.T) {
	m := New()
	ctx := context.Background()

	date, _ := core.ParseDate("2024-01-15")
	ref, err := m.Append(ctx, core.Transaction{
		ID: "a1", Date: date, Amount: core.Money{Cents: -4217}, Description: "Groceries",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "row-1" {
		t.Fatalf("ref = %q, want row-1", ref)
	}

	ids, err := m.ListIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a1" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestMirrorRejectsInvalid(t *testing.T) {
	m := New()
	if _, err := m.Append(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected validation error for zero transaction")
	}
}
