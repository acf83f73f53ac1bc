package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conto/internal/core"
	"conto/internal/detect"
	"conto/internal/store"
)

// SettingsService manages category rules, column preferences and manual
// tag overrides.
type SettingsService struct {
	store   *store.Store
	backend store.Backend
}

func NewSettingsService(st *store.Store, backend store.Backend) *SettingsService {
	return &SettingsService{store: st, backend: backend}
}

func (s *SettingsService) Rules(ctx context.Context) ([]core.CategoryRule, error) {
	return s.backend.LoadRules(ctx)
}

// SaveRules replaces the rule list and re-categorizes every stored
// transaction that still carries the default category. Explicit source
// categories are never touched.
func (s *SettingsService) SaveRules(ctx context.Context, rules []core.CategoryRule) error {
	for i, rule := range rules {
		if strings.TrimSpace(rule.Match) == "" {
			return fmt.Errorf("rule %d: match must not be empty", i+1)
		}
		if strings.TrimSpace(rule.Category) == "" {
			return fmt.Errorf("rule %d: category must not be empty", i+1)
		}
	}

	if err := s.backend.SaveRules(ctx, rules); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}

	txs := detect.Categorize(s.store.Transactions(), rules)
	if err := s.store.SetTransactions(ctx, txs); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category rules updated", "rules", len(rules))
	return nil
}

func (s *SettingsService) Preferences(ctx context.Context) (map[string]bool, error) {
	prefs, err := s.backend.LoadPreferences(ctx)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = map[string]bool{}
	}
	return prefs, nil
}

func (s *SettingsService) SavePreferences(ctx context.Context, prefs map[string]bool) error {
	if err := s.backend.SavePreferences(ctx, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// UpdateTag applies a manual tag override. Any casing of a built-in
// flow tag is stored in its canonical form; an empty tag clears the
// assignment.
func (s *SettingsService) UpdateTag(ctx context.Context, id, tag string) error {
	tag = strings.TrimSpace(tag)
	if canonical := core.CanonicalFlowTag(tag); canonical != "" {
		tag = canonical
	}
	return s.store.UpdateTag(ctx, id, tag)
}
