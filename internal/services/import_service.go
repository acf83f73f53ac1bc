// Package services orchestrates the ingestion pipeline and the
// supporting settings operations across the store, the persistence
// backend and the sync queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"conto/internal/core"
	"conto/internal/detect"
	"conto/internal/ingest"
	"conto/internal/log"
	"conto/internal/store"
)

// SyncPublisher publishes one sync message per newly added transaction.
// Implemented by the AMQP client; nil disables publishing.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, batchID string) error
}

// ImportReport summarizes one import for the caller.
type ImportReport struct {
	BatchID    string   `json:"batchId"`
	Filename   string   `json:"filename"`
	Parsed     int      `json:"parsed"`
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Total      int      `json:"total"`
	Flagged    int      `json:"flagged"`
	Skipped    []string `json:"skipped,omitempty"`
}

// ImportService runs the full pipeline: parse, normalize, categorize,
// detect flow tags, merge, record the upload and queue the mirror sync.
type ImportService struct {
	store     *store.Store
	backend   store.Backend
	detector  *detect.Detector
	publisher SyncPublisher
	now       func() time.Time
}

func NewImportService(st *store.Store, backend store.Backend, detector *detect.Detector, publisher SyncPublisher) *ImportService {
	return &ImportService{
		store:     st,
		backend:   backend,
		detector:  detector,
		publisher: publisher,
		now:       time.Now,
	}
}

// ImportFile ingests one uploaded file. Parse failures abort the import;
// rows with uninterpretable dates are skipped and reported; everything
// else is merged. The sync queue is best effort: a dead broker never
// fails an import.
func (s *ImportService) ImportFile(ctx context.Context, filename, content string) (ImportReport, error) {
	report := ImportReport{Filename: filename}

	rows, err := ingest.Parse(content, filename)
	if err != nil {
		return report, err
	}
	report.Parsed = len(rows)

	normalized, skipped := ingest.NormalizeAll(rows)
	for _, rowErr := range skipped {
		report.Skipped = append(report.Skipped, rowErr.String())
	}
	if len(normalized) == 0 {
		return report, fmt.Errorf("no importable rows in %s (%d skipped)", filename, len(skipped))
	}

	txs := make([]core.Transaction, len(normalized))
	for i, n := range normalized {
		txs[i] = n.Tx
		report.Flagged += len(n.Flags)
	}

	rules, err := s.backend.LoadRules(ctx)
	if err != nil {
		return report, fmt.Errorf("load category rules: %w", err)
	}
	txs = detect.Categorize(txs, rules)
	txs = s.detector.Tag(txs)

	result, err := s.store.MergeTransactions(ctx, txs)
	if err != nil {
		return report, err
	}
	report.Added = len(result.Added)
	report.Duplicates = result.Duplicates
	report.Total = result.Total

	report.BatchID = uuid.NewString()
	meta := core.UploadMeta{
		BatchID:          report.BatchID,
		Filename:         filename,
		TransactionCount: report.Added,
		Timestamp:        s.now().UTC().Format(time.RFC3339),
	}
	if err := s.backend.SaveUploadMeta(ctx, meta); err != nil {
		return report, fmt.Errorf("record upload: %w", err)
	}

	s.publishSync(ctx, result.Added, report.BatchID)

	slog.InfoContext(ctx, "Import completed",
		log.FieldComponent, log.ComponentImport,
		log.FieldFilename, filename,
		log.FieldBatchID, report.BatchID,
		"added", report.Added,
		"duplicates", report.Duplicates,
		"skipped", len(report.Skipped))
	return report, nil
}

func (s *ImportService) publishSync(ctx context.Context, added []core.Transaction, batchID string) {
	if s.publisher == nil {
		return
	}
	for _, tx := range added {
		if err := s.publisher.PublishTransactionSync(ctx, tx.ID, batchID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				log.FieldComponent, log.ComponentImport,
				log.FieldTxID, tx.ID,
				log.FieldError, err.Error())
			// The import already succeeded locally; the worker catches
			// up from the pending sync state.
			return
		}
	}
}

// LastUpload returns the most recent upload record, nil when none.
func (s *ImportService) LastUpload(ctx context.Context) (*core.UploadMeta, error) {
	return s.backend.LoadUploadMeta(ctx)
}
