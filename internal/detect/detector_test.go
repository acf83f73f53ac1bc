package detect

import (
	"testing"

	"conto/internal/core"
)

func tx(desc, counterparty, subcategory string) core.Transaction {
	return core.Transaction{
		Description:  desc,
		Counterparty: counterparty,
		Subcategory:  subcategory,
	}
}

func TestDetectInvestments(t *testing.T) {
	d := Default()
	cases := []core.Transaction{
		tx("Monthly ETF savings plan", "", ""),
		tx("Stock purchase AAPL", "", ""),
		tx("", "DEGIRO B.V.", ""),
		tx("", "", "Securities"),
	}
	for _, c := range cases {
		if got := d.DetectTag(c); got != core.TagInvestments {
			t.Fatalf("DetectTag(%+v) = %q, want Investments", c, got)
		}
	}
}

func TestFeeExclusionOverridesInvestmentKeywords(t *testing.T) {
	d := Default()
	// Contains both an investment keyword and a fee keyword: must not be
	// classified as an investment inflow.
	c := tx("Trading fee for stock purchase", "", "")
	if got := d.DetectTag(c); got == core.TagInvestments {
		t.Fatalf("fee exclusion must override keyword match, got %q", got)
	}
}

func TestDetectSavingsAndTransfers(t *testing.T) {
	d := Default()
	if got := d.DetectTag(tx("Transfer to savings account", "", "")); got != core.TagSavings {
		t.Fatalf("savings beats transfers, got %q", got)
	}
	if got := d.DetectTag(tx("SEPA credit transfer", "", "")); got != core.TagTransfers {
		t.Fatalf("transfer keyword, got %q", got)
	}
	if got := d.DetectTag(tx("", "", "Outgoing Transfer")); got != core.TagTransfers {
		t.Fatalf("transfer subcategory, got %q", got)
	}
}

func TestInvestmentsBeatTransfers(t *testing.T) {
	d := Default()
	// Contains both signals; the more specific group wins.
	if got := d.DetectTag(tx("Investment account transfer", "", "")); got != core.TagInvestments {
		t.Fatalf("got %q, want Investments", got)
	}
}

func TestStickyTagIsNeverReevaluated(t *testing.T) {
	d := Default()
	c := tx("Monthly ETF savings plan", "", "")
	c.Tag = "savings" // manual override, lowercased on purpose
	first := d.DetectTag(c)
	if first != core.TagSavings {
		t.Fatalf("sticky tag must win and be capitalized, got %q", first)
	}
	// Re-running on the stored result yields the same answer.
	c.Tag = first
	if again := d.DetectTag(c); again != core.TagSavings {
		t.Fatalf("re-run changed the tag to %q", again)
	}
}

func TestNoMatchReturnsEmpty(t *testing.T) {
	d := Default()
	if tag := d.DetectTag(tx("REWE Markt Berlin", "REWE", "Card Payment")); tag != "" {
		t.Fatalf("expected no tag, got %q", tag)
	}
}

func TestNewRejectsBadPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Savings.AccountPatterns = []string{"("}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestApplyRulesFirstMatchWins(t *testing.T) {
	rules := []core.CategoryRule{
		{Match: "rewe", Category: "Groceries"},
		{Match: "markt", Category: "Shopping"},
	}
	c := tx("REWE Markt Berlin", "", "")
	if cat := ApplyRules(c, rules); cat != "Groceries" {
		t.Fatalf("first match must win, got %q", cat)
	}
	if cat := ApplyRules(tx("Unrelated", "", ""), rules); cat != "" {
		t.Fatalf("no match must yield empty, got %q", cat)
	}
}

func TestCategorizeKeepsExplicitCategories(t *testing.T) {
	rules := []core.CategoryRule{{Match: "rewe", Category: "Groceries"}}
	txs := []core.Transaction{
		{Description: "REWE Markt", Category: core.DefaultCategory},
		{Description: "REWE Markt", Category: "Food"},
	}
	out := Categorize(txs, rules)
	if out[0].Category != "Groceries" {
		t.Fatalf("default category must be replaced, got %q", out[0].Category)
	}
	if out[1].Category != "Food" {
		t.Fatalf("explicit category must be kept, got %q", out[1].Category)
	}
}
