package detect

// RuleGroup is one built-in detection rule set. Pure data so it can be
// unit-tested independently of the detector's control flow.
type RuleGroup struct {
	// Keywords match as lowercase substrings of the description.
	Keywords []string
	// AccountPatterns are regular expressions matched against the
	// description and the counterparty.
	AccountPatterns []string
	// Subcategories match the transaction subcategory exactly
	// (case-insensitive).
	Subcategories []string
	// FeeKeywords short-circuit the whole group when any of them appears
	// in the description. Only populated for investments: a brokerage fee
	// must never be counted as investment inflow.
	FeeKeywords []string
}

// Config holds the three built-in flow detection groups.
type Config struct {
	Investments RuleGroup
	Savings     RuleGroup
	Transfers   RuleGroup
}

// DefaultConfig covers the common European bank and broker exports.
func DefaultConfig() Config {
	return Config{
		Investments: RuleGroup{
			Keywords: []string{
				"invest", "etf", "stock", "shares", "securities",
				"crypto", "bitcoin", "portfolio",
				"degiro", "trade republic", "etoro", "interactive brokers",
				"coinbase", "kraken",
			},
			AccountPatterns: []string{
				`(?i)degiro`,
				`(?i)flatex`,
				`(?i)broker(age)?`,
				`(?i)trade\s*republic`,
			},
			Subcategories: []string{
				"Investment", "Investments", "Securities", "Stocks & Funds",
			},
			FeeKeywords: []string{
				"fee", "commission", "charge", "cost", "expense",
				"custody fee", "management fee", "transaction fee",
				"trading fee", "service charge",
			},
		},
		Savings: RuleGroup{
			Keywords: []string{
				"savings", "saving goal", "emergency fund", "rainy day",
				"vault", "spaces",
			},
			AccountPatterns: []string{
				`(?i)savings?\s*(account)?`,
				`(?i)\bspace\b`,
			},
			Subcategories: []string{
				"Savings", "Savings Account",
			},
		},
		Transfers: RuleGroup{
			Keywords: []string{
				"transfer", "wire", "sepa credit", "moneybeam",
				"own account",
			},
			AccountPatterns: []string{
				`(?i)internal`,
				`(?i)own\s+account`,
			},
			Subcategories: []string{
				"Transfer", "Outgoing Transfer", "Incoming Transfer",
			},
		},
	}
}
