package services

import (
	"context"
	"testing"

	"conto/internal/core"
	"conto/internal/store"
)

func TestSaveRulesRecategorizesDefaults(t *testing.T) {
	backend := &memBackend{}
	st := store.New(backend)
	svc := NewSettingsService(st, backend)
	ctx := context.Background()

	date, _ := core.ParseDate("2024-01-15")
	st.SetTransactions(ctx, []core.Transaction{
		{ID: "a1", Date: date, Amount: core.Money{Cents: -4217}, Description: "REWE Berlin", Category: core.DefaultCategory},
		{ID: "b2", Date: date, Amount: core.Money{Cents: -900}, Description: "REWE Berlin", Category: "Household"},
	})

	err := svc.SaveRules(ctx, []core.CategoryRule{{Match: "rewe", Category: "Groceries"}})
	if err != nil {
		t.Fatalf("save rules: %v", err)
	}

	txs := st.Transactions()
	if txs[0].Category != "Groceries" {
		t.Fatalf("default category not replaced: %+v", txs[0])
	}
	if txs[1].Category != "Household" {
		t.Fatalf("explicit category must survive: %+v", txs[1])
	}
}

func TestSaveRulesValidation(t *testing.T) {
	svc := NewSettingsService(store.New(&memBackend{}), &memBackend{})

	if err := svc.SaveRules(context.Background(), []core.CategoryRule{{Match: " ", Category: "X"}}); err == nil {
		t.Fatal("empty match must be rejected")
	}
	if err := svc.SaveRules(context.Background(), []core.CategoryRule{{Match: "x", Category: ""}}); err == nil {
		t.Fatal("empty category must be rejected")
	}
}

func TestUpdateTagCanonicalizesFlowTags(t *testing.T) {
	backend := &memBackend{}
	st := store.New(backend)
	svc := NewSettingsService(st, backend)
	ctx := context.Background()

	date, _ := core.ParseDate("2024-01-15")
	st.SetTransactions(ctx, []core.Transaction{
		{ID: "a1", Date: date, Amount: core.Money{Cents: -4217}, Description: "Vault"},
	})

	if err := svc.UpdateTag(ctx, "a1", "savings"); err != nil {
		t.Fatalf("update tag: %v", err)
	}
	got, _ := st.Find("a1")
	if got.Tag != core.TagSavings {
		t.Fatalf("tag = %q, want %q", got.Tag, core.TagSavings)
	}

	// A free-text tag passes through unchanged.
	if err := svc.UpdateTag(ctx, "a1", "Vacation"); err != nil {
		t.Fatalf("update tag: %v", err)
	}
	got, _ = st.Find("a1")
	if got.Tag != "Vacation" {
		t.Fatalf("tag = %q, want Vacation", got.Tag)
	}
}

func TestPreferencesDefaultEmpty(t *testing.T) {
	svc := NewSettingsService(store.New(&memBackend{}), &memBackend{})

	prefs, err := svc.Preferences(context.Background())
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if prefs == nil || len(prefs) != 0 {
		t.Fatalf("prefs = %+v, want empty map", prefs)
	}
}
