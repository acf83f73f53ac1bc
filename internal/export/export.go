// Package export writes the transaction collection and the computed
// reports as downloadable JSON documents. Exported transactions use the
// same field names the importer understands, so an export can be
// re-imported without losing ids, amounts or tags.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"conto/internal/core"
	"conto/internal/report"
)

// TransactionsDocument is the on-disk shape of a transactions export.
type TransactionsDocument struct {
	ExportID     string             `json:"exportId"`
	ExportedAt   time.Time          `json:"exportedAt"`
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

// ReportsDocument is the on-disk shape of a reports export.
type ReportsDocument struct {
	ExportID   string               `json:"exportId"`
	ExportedAt time.Time            `json:"exportedAt"`
	Monthly    []report.PeriodStats `json:"monthly"`
}

// TransactionsFilename returns the suggested download name for a
// transactions export taken at the given time.
func TransactionsFilename(now time.Time) string {
	return fmt.Sprintf("conto-transactions-%s.json", now.Format("2006-01-02"))
}

// ReportsFilename returns the suggested download name for a reports
// export taken at the given time.
func ReportsFilename(now time.Time) string {
	return fmt.Sprintf("conto-reports-%s.json", now.Format("2006-01-02"))
}

// WriteTransactions writes the full collection as indented JSON.
func WriteTransactions(w io.Writer, txs []core.Transaction, now time.Time) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	doc := TransactionsDocument{
		ExportID:     uuid.NewString(),
		ExportedAt:   now.UTC(),
		Count:        len(txs),
		Transactions: txs,
	}
	return encode(w, doc)
}

// WriteReports writes the monthly statistics as indented JSON.
func WriteReports(w io.Writer, monthly []report.PeriodStats, now time.Time) error {
	if monthly == nil {
		monthly = []report.PeriodStats{}
	}
	doc := ReportsDocument{
		ExportID:   uuid.NewString(),
		ExportedAt: now.UTC(),
		Monthly:    monthly,
	}
	return encode(w, doc)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
