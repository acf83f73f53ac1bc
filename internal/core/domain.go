package core

import (
	"strings"
)

// Built-in financial-flow tags assigned by the detector. User-defined
// category rules may attach any other free-text tag.
const (
	TagInvestments = "Investments"
	TagSavings     = "Savings"
	TagTransfers   = "Transfers"
)

// DefaultCategory is assigned when a row carries no category and no rule matches.
const DefaultCategory = "Other"

type (
	// Transaction is the canonical record produced by ingestion. It is
	// immutable once ingested except for Tag, which the detector or a
	// manual override may set.
	Transaction struct {
		ID           string `json:"id"`
		Date         Date   `json:"date"`
		Amount       Money  `json:"amount"`
		Description  string `json:"description"`
		Counterparty string `json:"counterparty"`
		Account      string `json:"account"`
		Category     string `json:"category"`
		Subcategory  string `json:"subcategory"`
		Tag          string `json:"tag,omitempty"`
	}

	// CategoryRule is a user-defined rule: first substring match on the
	// description wins. Distinct from the built-in flow detectors.
	CategoryRule struct {
		Match    string `json:"match"`
		Category string `json:"category"`
	}

	// UploadMeta records the most recent import for the dashboard.
	UploadMeta struct {
		BatchID          string `json:"batchId"`
		Filename         string `json:"filename"`
		TransactionCount int    `json:"transactionCount"`
		Timestamp        string `json:"timestamp"`
	}
)

// IsFlowTag reports whether tag is one of the built-in flow tags,
// case-insensitively.
func IsFlowTag(tag string) bool {
	return CanonicalFlowTag(tag) != ""
}

// CanonicalFlowTag maps any casing of a built-in flow tag to its canonical
// capitalized form, or returns "" for everything else.
func CanonicalFlowTag(tag string) string {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "investments":
		return TagInvestments
	case "savings":
		return TagSavings
	case "transfers":
		return TagTransfers
	}
	return ""
}

// IsCredit reports whether the transaction increases the account balance.
func (t Transaction) IsCredit() bool {
	return t.Amount.Cents > 0
}

// IsDebit reports whether the transaction decreases the account balance.
func (t Transaction) IsDebit() bool {
	return t.Amount.Cents < 0
}

// Validate checks the invariants the pipeline guarantees for every stored
// transaction.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	return t.Date.Validate()
}
