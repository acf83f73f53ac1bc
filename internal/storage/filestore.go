// Package storage provides the persistence backends for the transaction
// collection: a JSON file store (one document per slot, the analog of
// the original single local-storage key) and a SQLite repository.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"conto/internal/core"
	"conto/internal/store"
)

var _ store.Backend = (*FileStore)(nil)

// Slot filenames under the data directory.
const (
	slotTransactions = "transactions.json"
	slotRules        = "category_rules.json"
	slotPreferences  = "column_preferences.json"
	slotUpload       = "last_upload.json"
)

// FileStore persists each slot as one JSON document in a data directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) LoadTransactions(_ context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := f.readSlot(slotTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (f *FileStore) SaveTransactions(_ context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return f.writeSlot(slotTransactions, txs)
}

func (f *FileStore) LoadRules(_ context.Context) ([]core.CategoryRule, error) {
	var rules []core.CategoryRule
	if err := f.readSlot(slotRules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (f *FileStore) SaveRules(_ context.Context, rules []core.CategoryRule) error {
	if rules == nil {
		rules = []core.CategoryRule{}
	}
	return f.writeSlot(slotRules, rules)
}

func (f *FileStore) LoadPreferences(_ context.Context) (map[string]bool, error) {
	prefs := map[string]bool{}
	if err := f.readSlot(slotPreferences, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (f *FileStore) SavePreferences(_ context.Context, prefs map[string]bool) error {
	return f.writeSlot(slotPreferences, prefs)
}

func (f *FileStore) LoadUploadMeta(_ context.Context) (*core.UploadMeta, error) {
	var meta core.UploadMeta
	found, err := f.readSlotExists(slotUpload, &meta)
	if err != nil || !found {
		return nil, err
	}
	return &meta, nil
}

func (f *FileStore) SaveUploadMeta(_ context.Context, meta core.UploadMeta) error {
	return f.writeSlot(slotUpload, meta)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) readSlot(name string, out any) error {
	_, err := f.readSlotExists(name, out)
	return err
}

// readSlotExists reports whether the slot file was present; a missing
// slot is not an error, it just means nothing was stored yet.
func (f *FileStore) readSlotExists(name string, out any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read slot %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", name, err)
	}
	return true, nil
}

// writeSlot writes via a temp file and rename so a failed write (e.g.
// disk full) never leaves a truncated slot behind.
func (f *FileStore) writeSlot(name string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", name, err)
	}

	path := filepath.Join(f.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write slot %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace slot %s: %w", name, err)
	}
	return nil
}
