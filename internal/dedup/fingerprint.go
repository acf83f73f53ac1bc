// Package dedup derives stable transaction identities and merges
// imported batches into the stored collection without duplication.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"conto/internal/core"
)

// Fingerprint returns the stable id for a transaction. A source-provided
// id (JSON imports) is used verbatim; otherwise the id is derived from
// the content tuple (canonical date, cents, normalized description,
// counterparty), so re-deriving it from the same content always yields
// the same value.
//
// Two genuinely distinct transactions on the same day with the same
// amount, description and counterparty collapse into one id. Accepted
// limitation: any disambiguator would break idempotent re-import.
func Fingerprint(tx core.Transaction) string {
	if id := strings.TrimSpace(tx.ID); id != "" {
		return id
	}

	tuple := strings.Join([]string{
		tx.Date.String(),
		strconv.FormatInt(tx.Amount.Cents, 10),
		strings.ToLower(strings.TrimSpace(tx.Description)),
		strings.ToLower(strings.TrimSpace(tx.Counterparty)),
	}, "|")

	sum := sha256.Sum256([]byte(tuple))
	return hex.EncodeToString(sum[:16])
}

// WithFingerprints returns a copy of the batch with every transaction's
// ID filled in.
func WithFingerprints(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		tx.ID = Fingerprint(tx)
		out[i] = tx
	}
	return out
}
