// Package detect assigns the built-in financial-flow tags (Investments,
// Savings, Transfers) and applies user-defined category rules. The
// detector is a pure decision table: no state, strict priority order.
package detect

import (
	"fmt"
	"regexp"
	"strings"

	"conto/internal/core"
)

// Detector evaluates the built-in flow detection groups against a
// transaction. Priority order: an already-assigned flow tag is sticky;
// then investments, savings, transfers; investments before savings
// before transfers because the keyword sets get less specific in that
// order ("investment account transfer" is an investment, not a generic
// transfer).
type Detector struct {
	investments compiledGroup
	savings     compiledGroup
	transfers   compiledGroup
}

type compiledGroup struct {
	keywords    []string
	feeKeywords []string
	patterns    []*regexp.Regexp
	subcats     map[string]struct{}
}

// New compiles a detection config. Fails if an account pattern is not a
// valid regular expression.
func New(cfg Config) (*Detector, error) {
	d := &Detector{}
	for _, g := range []struct {
		name  string
		src   RuleGroup
		dst   *compiledGroup
	}{
		{"investments", cfg.Investments, &d.investments},
		{"savings", cfg.Savings, &d.savings},
		{"transfers", cfg.Transfers, &d.transfers},
	} {
		compiled, err := compileGroup(g.src)
		if err != nil {
			return nil, fmt.Errorf("compile %s group: %w", g.name, err)
		}
		*g.dst = compiled
	}
	return d, nil
}

// Default returns a detector for the built-in config.
func Default() *Detector {
	d, err := New(DefaultConfig())
	if err != nil {
		// The built-in patterns are constants; this cannot happen at runtime.
		panic(err)
	}
	return d
}

func compileGroup(g RuleGroup) (compiledGroup, error) {
	out := compiledGroup{
		subcats: make(map[string]struct{}, len(g.Subcategories)),
	}
	for _, k := range g.Keywords {
		out.keywords = append(out.keywords, strings.ToLower(k))
	}
	for _, k := range g.FeeKeywords {
		out.feeKeywords = append(out.feeKeywords, strings.ToLower(k))
	}
	for _, s := range g.Subcategories {
		out.subcats[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, p := range g.AccountPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return compiledGroup{}, fmt.Errorf("pattern %q: %w", p, err)
		}
		out.patterns = append(out.patterns, re)
	}
	return out, nil
}

// DetectTag returns Investments, Savings, Transfers or "" for a
// transaction. A previously assigned flow tag (manual or automatic) is
// returned as-is, capitalized; classification is never re-derived.
func (d *Detector) DetectTag(tx core.Transaction) string {
	if tag := core.CanonicalFlowTag(tx.Tag); tag != "" {
		return tag
	}

	desc := strings.ToLower(tx.Description)

	if !containsAny(desc, d.investments.feeKeywords) && d.investments.matches(tx, desc) {
		return core.TagInvestments
	}
	if d.savings.matches(tx, desc) {
		return core.TagSavings
	}
	if d.transfers.matches(tx, desc) {
		return core.TagTransfers
	}
	return ""
}

// matches runs the three tiers in decreasing specificity: subcategory
// exact match, description keyword, account pattern against description
// or counterparty.
func (g compiledGroup) matches(tx core.Transaction, lowerDesc string) bool {
	if _, ok := g.subcats[strings.ToLower(strings.TrimSpace(tx.Subcategory))]; ok {
		return true
	}
	if containsAny(lowerDesc, g.keywords) {
		return true
	}
	for _, re := range g.patterns {
		if re.MatchString(tx.Description) || re.MatchString(tx.Counterparty) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Tag fills tx.Tag for every transaction in the batch that has no tag
// yet, returning the updated copy. A transaction with any existing tag,
// flow or user-defined, is left alone.
func (d *Detector) Tag(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if tx.Tag == "" {
			tx.Tag = d.DetectTag(tx)
		}
		out[i] = tx
	}
	return out
}
