package txengine

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
)

// Entry is the ledger record of an applied deposit. It never changes once written.
type Entry struct {
	Tx     TxID
	Client ClientID
	Amount Amount
}

// Ledger stores disputable transactions so that a dispute can recover the
// client and amount of the transaction it references.
//
// Implementations may be in memory or backed by an external index.
type Ledger interface {
	// RecordDeposit stores e. It fails with ErrDuplicateTx if e.Tx is already known.
	RecordDeposit(ctx context.Context, e Entry) error
	// Lookup returns the entry for tx, and false if tx is unknown.
	Lookup(ctx context.Context, tx TxID) (Entry, bool, error)
}

// MemLedger is an in-memory Ledger. It is safe for concurrent use.
type MemLedger struct {
	mu      sync.RWMutex
	entries map[TxID]Entry
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *MemLedger {
	return &MemLedger{entries: make(map[TxID]Entry)}
}

// RecordDeposit implements Ledger.
func (l *MemLedger) RecordDeposit(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[e.Tx]; exists {
		return fmt.Errorf("tx %d: %w", e.Tx, ErrDuplicateTx)
	}
	l.entries[e.Tx] = e
	return nil
}

// Lookup implements Ledger.
func (l *MemLedger) Lookup(_ context.Context, tx TxID) (Entry, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[tx]
	return e, ok, nil
}

// Len returns the number of entries.
func (l *MemLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries iterates over the entries in ascending transaction id order.
func (l *MemLedger) Entries() iter.Seq[Entry] {
	l.mu.RLock()
	ids := slices.Sorted(maps.Keys(l.entries))
	l.mu.RUnlock()
	return func(yield func(Entry) bool) {
		for _, id := range ids {
			l.mu.RLock()
			e := l.entries[id]
			l.mu.RUnlock()
			if !yield(e) {
				return
			}
		}
	}
}
