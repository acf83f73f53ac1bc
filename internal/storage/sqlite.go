package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"conto/internal/core"
	"conto/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Backend = (*SQLiteRepository)(nil)

// Sync states for the worker queue.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// SQLiteRepository implements store.Backend on a local SQLite file. It
// additionally tracks a per-transaction sync status consumed by the
// sheets mirror worker.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, amount_cents, description, counterparty, account, category, subcategory, tag
		FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// SaveTransactions replaces the whole collection in one database
// transaction. The sync status of rows that survive the replace is
// preserved so a re-import does not re-queue already mirrored entries.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	statuses, err := loadSyncStatuses(ctx, dbTx)
	if err != nil {
		return err
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, position, date, amount_cents, description, counterparty, account, category, subcategory, tag, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, tx := range txs {
		status, ok := statuses[tx.ID]
		if !ok {
			status = SyncPending
		}
		if _, err := stmt.ExecContext(ctx, tx.ID, i, tx.Date.String(), tx.Amount.Cents,
			tx.Description, tx.Counterparty, tx.Account, tx.Category, tx.Subcategory, tx.Tag, status); err != nil {
			return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit transactions: %w", err)
	}
	return nil
}

func loadSyncStatuses(ctx context.Context, dbTx *sql.Tx) (map[string]string, error) {
	rows, err := dbTx.QueryContext(ctx, `SELECT id, sync_status FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("query sync statuses: %w", err)
	}
	defer rows.Close()

	statuses := map[string]string{}
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("scan sync status: %w", err)
		}
		statuses[id] = status
	}
	return statuses, rows.Err()
}

func (r *SQLiteRepository) LoadRules(ctx context.Context) ([]core.CategoryRule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT match, category FROM category_rules ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []core.CategoryRule
	for rows.Next() {
		var rule core.CategoryRule
		if err := rows.Scan(&rule.Match, &rule.Category); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *SQLiteRepository) SaveRules(ctx context.Context, rules []core.CategoryRule) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM category_rules`); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}
	for i, rule := range rules {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO category_rules (position, match, category) VALUES (?, ?, ?)`,
			i, rule.Match, rule.Category); err != nil {
			return fmt.Errorf("insert rule %d: %w", i, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit rules: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadPreferences(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT column_name, visible FROM column_preferences`)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	prefs := map[string]bool{}
	for rows.Next() {
		var name string
		var visible int
		if err := rows.Scan(&name, &visible); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[name] = visible != 0
	}
	return prefs, rows.Err()
}

func (r *SQLiteRepository) SavePreferences(ctx context.Context, prefs map[string]bool) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM column_preferences`); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	for name, visible := range prefs {
		v := 0
		if visible {
			v = 1
		}
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO column_preferences (column_name, visible) VALUES (?, ?)`, name, v); err != nil {
			return fmt.Errorf("insert preference %s: %w", name, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit preferences: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadUploadMeta(ctx context.Context) (*core.UploadMeta, error) {
	var meta core.UploadMeta
	err := r.db.QueryRowContext(ctx, `
		SELECT batch_id, filename, transaction_count, uploaded_at
		FROM uploads ORDER BY uploaded_at DESC LIMIT 1`).
		Scan(&meta.BatchID, &meta.Filename, &meta.TransactionCount, &meta.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query upload meta: %w", err)
	}
	return &meta, nil
}

func (r *SQLiteRepository) SaveUploadMeta(ctx context.Context, meta core.UploadMeta) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO uploads (batch_id, filename, transaction_count, uploaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(batch_id) DO UPDATE SET
			filename = excluded.filename,
			transaction_count = excluded.transaction_count,
			uploaded_at = excluded.uploaded_at`,
		meta.BatchID, meta.Filename, meta.TransactionCount, meta.Timestamp)
	if err != nil {
		return fmt.Errorf("save upload meta: %w", err)
	}
	return nil
}

// GetPendingSync returns transactions not yet mirrored, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, amount_cents, description, counterparty, account, category, subcategory, tag
		FROM transactions WHERE sync_status = ? ORDER BY position LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetTransaction retrieves one transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, amount_cents, description, counterparty, account, category, subcategory, tag
		FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncSynced, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var date string
	var cents int64
	if err := row.Scan(&tx.ID, &date, &cents, &tx.Description, &tx.Counterparty,
		&tx.Account, &tx.Category, &tx.Subcategory, &tx.Tag); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	tx.Date = parsed
	tx.Amount = core.Money{Cents: cents}
	return tx, nil
}
