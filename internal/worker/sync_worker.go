// Package worker mirrors imported transactions from the SQLite
// repository to the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"conto/internal/amqp"
	"conto/internal/core"
	"conto/internal/log"
	"conto/internal/sheets"
	"conto/internal/storage"
)

// SyncWorker consumes sync messages and appends the referenced
// transactions to the mirror, tracking per-row sync state in SQLite.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    sheets.TransactionWriter
	batchSize int
}

func NewSyncWorker(repo *storage.SQLiteRepository, mirror sheets.TransactionWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		storage:   repo,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage mirrors one transaction referenced by an AMQP
// message. A transaction that vanished between publish and consume (a
// clear-all, for instance) is acknowledged without an error.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		log.FieldComponent, log.ComponentWorker,
		log.FieldTxID, msg.ID,
		log.FieldBatchID, msg.BatchID)

	tx, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	if tx == nil {
		slog.WarnContext(ctx, "Transaction no longer exists, skipping",
			log.FieldComponent, log.ComponentWorker,
			log.FieldTxID, msg.ID)
		return nil
	}

	return w.mirrorTransaction(ctx, tx.ID, *tx)
}

// ProcessPending mirrors transactions still marked pending. Run at
// startup and on a timer, it catches everything a lost message or a
// broker outage left behind. Returns how many were mirrored.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending sync: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending sync backlog", "count", len(pending))

	synced := 0
	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.mirrorTransaction(ctx, tx.ID, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending transaction",
				"id", tx.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) mirrorTransaction(ctx context.Context, id string, tx core.Transaction) error {
	rowRef, err := w.mirror.Append(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		log.FieldComponent, log.ComponentWorker,
		log.FieldTxID, id,
		log.FieldSheetsRef, rowRef)
	return nil
}
