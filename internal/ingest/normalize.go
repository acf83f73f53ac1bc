package ingest

import (
	"fmt"
	"strings"

	"conto/internal/core"
)

// Normalized pairs the raw parsed row with its canonical transaction.
// Flags record per-field format problems that were swallowed with a safe
// default instead of aborting the batch.
type Normalized struct {
	Raw   Row
	Tx    core.Transaction
	Flags []string
}

// RowError reports a row the normalizer had to skip entirely (a date
// that cannot be interpreted leaves nothing to aggregate on).
type RowError struct {
	Line int
	Err  error
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// Normalize maps one parsed row onto a canonical transaction. A bad or
// missing date fails with a FormatError; a bad amount is swallowed with
// zero cents and flagged so one malformed row never aborts a
// multi-thousand-row import.
func Normalize(row Row) (Normalized, error) {
	n := Normalized{Raw: row}

	date, err := core.ParseDate(row.Get(FieldDate))
	if err != nil {
		return n, err
	}

	amountStr := strings.TrimSpace(row.Get(FieldAmount))
	cents, err := core.ParseAmountToCents(amountStr)
	if err != nil {
		cents = 0
		n.Flags = append(n.Flags, (&core.FormatError{Field: FieldAmount, Value: amountStr}).Error())
	}

	category := strings.TrimSpace(row.Get(FieldCategory))
	if category == "" {
		category = core.DefaultCategory
	}

	n.Tx = core.Transaction{
		ID:           strings.TrimSpace(row.Get(FieldID)),
		Date:         date,
		Amount:       core.Money{Cents: cents},
		Description:  strings.TrimSpace(row.Get(FieldDescription)),
		Counterparty: strings.TrimSpace(row.Get(FieldCounterparty)),
		Account:      strings.TrimSpace(row.Get(FieldAccount)),
		Category:     category,
		Subcategory:  strings.TrimSpace(row.Get(FieldSubcategory)),
		Tag:          strings.TrimSpace(row.Get(FieldTag)),
	}
	return n, nil
}

// NormalizeAll normalizes a batch, skipping rows whose date cannot be
// interpreted and reporting them alongside the per-field flags.
func NormalizeAll(rows []Row) ([]Normalized, []RowError) {
	out := make([]Normalized, 0, len(rows))
	var skipped []RowError
	for _, row := range rows {
		n, err := Normalize(row)
		if err != nil {
			skipped = append(skipped, RowError{Line: row.Line, Err: err})
			continue
		}
		out = append(out, n)
	}
	return out, skipped
}
