package dedup

import (
	"conto/internal/core"
)

// MergeResult reports what an import did to the collection.
type MergeResult struct {
	Added      []core.Transaction `json:"added"`
	Duplicates int                `json:"duplicates"`
	Total      int                `json:"total"`
}

// Merge computes which incoming transactions are new relative to the
// existing collection. Existing transactions always win: a duplicate id
// is dropped even when other fields differ, which makes re-importing the
// same file a no-op. The merge is append-only; existing order is never
// touched. Incoming transactions without an id get their fingerprint
// derived here.
func Merge(existing, incoming []core.Transaction) MergeResult {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, tx := range existing {
		seen[tx.ID] = struct{}{}
	}

	result := MergeResult{Added: []core.Transaction{}}
	for _, tx := range incoming {
		tx.ID = Fingerprint(tx)
		if _, dup := seen[tx.ID]; dup {
			result.Duplicates++
			continue
		}
		seen[tx.ID] = struct{}{}
		result.Added = append(result.Added, tx)
	}
	result.Total = len(existing) + len(result.Added)
	return result
}
