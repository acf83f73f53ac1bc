package detect

import (
	"strings"

	"conto/internal/core"
)

// ApplyRules returns the category of the first rule whose match string
// appears in the description (case-insensitive substring), or "" when no
// rule matches. Rules run in list order: first match wins.
func ApplyRules(tx core.Transaction, rules []core.CategoryRule) string {
	desc := strings.ToLower(tx.Description)
	for _, rule := range rules {
		m := strings.ToLower(strings.TrimSpace(rule.Match))
		if m == "" {
			continue
		}
		if strings.Contains(desc, m) {
			return rule.Category
		}
	}
	return ""
}

// Categorize applies user rules to every transaction that still carries
// the default category, leaving explicit source categories alone.
func Categorize(txs []core.Transaction, rules []core.CategoryRule) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if tx.Category == "" || tx.Category == core.DefaultCategory {
			if cat := ApplyRules(tx, rules); cat != "" {
				tx.Category = cat
			}
		}
		out[i] = tx
	}
	return out
}
