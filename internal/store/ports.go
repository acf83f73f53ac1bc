package store

import (
	"context"

	"conto/internal/core"
)

// Backend is the persistence port for the transaction collection and its
// auxiliary slots. Implemented by the JSON file store and the SQLite
// repository.
type Backend interface {
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	SaveTransactions(ctx context.Context, txs []core.Transaction) error

	LoadRules(ctx context.Context) ([]core.CategoryRule, error)
	SaveRules(ctx context.Context, rules []core.CategoryRule) error

	LoadPreferences(ctx context.Context) (map[string]bool, error)
	SavePreferences(ctx context.Context, prefs map[string]bool) error

	LoadUploadMeta(ctx context.Context) (*core.UploadMeta, error)
	SaveUploadMeta(ctx context.Context, meta core.UploadMeta) error

	Close() error
}
