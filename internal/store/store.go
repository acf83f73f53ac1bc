// Package store holds the shared transaction collection behind explicit
// mutation methods. There is no implicit reactivity: interested parties
// subscribe and get notified after each mutation.
package store

import (
	"context"
	"fmt"
	"sync"

	"conto/internal/core"
	"conto/internal/dedup"
)

// EventType identifies a store mutation.
type EventType string

const (
	EventMerged     EventType = "merged"
	EventReplaced   EventType = "replaced"
	EventTagUpdated EventType = "tag_updated"
	EventCleared    EventType = "cleared"
)

// Event is delivered to subscribers after a mutation. Count is the
// number of transactions the mutation touched.
type Event struct {
	Type  EventType
	Count int
	// IDs of the touched transactions, when the mutation knows them.
	IDs []string
}

// Store is the single owner of the in-memory transaction collection.
// All mutations go through it; each one is a read-modify-write under one
// lock, so two back-to-back imports cannot lose updates. Every mutation
// is persisted to the backend; a persistence failure is returned to the
// caller but does not roll back the in-memory collection.
type Store struct {
	mu      sync.Mutex
	backend Backend
	txs     []core.Transaction
	subs    []func(Event)
}

// New wraps a backend. Call Load before first use.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the persisted collection into memory.
func (s *Store) Load(ctx context.Context) error {
	txs, err := s.backend.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	s.mu.Lock()
	s.txs = txs
	s.mu.Unlock()
	return nil
}

// Subscribe registers a callback invoked after every mutation, in
// registration order, while the store lock is released.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Transactions returns a snapshot copy of the collection.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

// Find returns the transaction with the given id.
func (s *Store) Find(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// SetTransactions replaces the whole collection (used by restores).
func (s *Store) SetTransactions(ctx context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	s.txs = append([]core.Transaction(nil), txs...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(Event{Type: EventReplaced, Count: len(txs)})
	return err
}

// MergeTransactions merges an imported batch into the collection:
// duplicates by fingerprint are dropped, existing transactions are never
// reordered or overwritten. Read, merge and write happen under one lock
// so the operation is atomic with respect to other imports.
func (s *Store) MergeTransactions(ctx context.Context, incoming []core.Transaction) (dedup.MergeResult, error) {
	s.mu.Lock()
	result := dedup.Merge(s.txs, incoming)
	s.txs = append(s.txs, result.Added...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	ids := make([]string, len(result.Added))
	for i, tx := range result.Added {
		ids[i] = tx.ID
	}
	s.notify(Event{Type: EventMerged, Count: len(result.Added), IDs: ids})
	return result, err
}

// UpdateTag sets the tag of one transaction. Manual overrides are
// sticky: the detector never replaces a non-empty tag. An empty tag
// clears the assignment and re-opens the transaction for detection.
func (s *Store) UpdateTag(ctx context.Context, id, tag string) error {
	s.mu.Lock()
	found := false
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs[i].Tag = tag
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("unknown transaction id %q", id)
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(Event{Type: EventTagUpdated, Count: 1, IDs: []string{id}})
	return err
}

// ClearAll removes every transaction. The only bulk-delete path;
// immediate, no undo.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	n := len(s.txs)
	s.txs = nil
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(Event{Type: EventCleared, Count: n})
	return err
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.backend.SaveTransactions(ctx, s.txs); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}

func (s *Store) notify(ev Event) {
	s.mu.Lock()
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
