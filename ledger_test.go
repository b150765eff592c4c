package txengine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemLedger(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	if _, ok, err := l.Lookup(ctx, 1); ok || err != nil {
		t.Fatalf("Lookup(1) on empty ledger = %v, %v", ok, err)
	}

	e := Entry{Tx: 1, Client: 3, Amount: amt("2.5")}
	if err := l.RecordDeposit(ctx, e); err != nil {
		t.Fatalf("RecordDeposit() error = %v", err)
	}
	if err := l.RecordDeposit(ctx, Entry{Tx: 1, Client: 4, Amount: amt("9")}); !errors.Is(err, ErrDuplicateTx) {
		t.Errorf("RecordDeposit(duplicate) error = %v, want %v", err, ErrDuplicateTx)
	}

	got, ok, err := l.Lookup(ctx, 1)
	if !ok || err != nil {
		t.Fatalf("Lookup(1) = %v, %v", ok, err)
	}
	if diff := cmp.Diff(e, got); diff != "" {
		t.Errorf("Lookup(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestMemLedger_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	var wg sync.WaitGroup
	var mu sync.Mutex
	duplicates := 0
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tx := range 100 {
				err := l.RecordDeposit(ctx, Entry{Tx: TxID(tx), Client: ClientID(w), Amount: amt("1")})
				if errors.Is(err, ErrDuplicateTx) {
					mu.Lock()
					duplicates++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if l.Len() != 100 || duplicates != 700 {
		t.Errorf("ledger has %d entries and %d duplicates, want 100 and 700", l.Len(), duplicates)
	}
	var ids []TxID
	for e := range l.Entries() {
		ids = append(ids, e.Tx)
	}
	for i, id := range ids {
		if id != TxID(i) {
			t.Fatalf("Entries() not in ascending order: %v", ids)
		}
	}
}

func TestBook(t *testing.T) {
	b := NewBook()
	b.GetOrCreate(5)
	b.GetOrCreate(2).Available = amt("1")
	b.GetOrCreate(5).Locked = true

	want := []Account{
		{Client: 2, Available: amt("1")},
		{Client: 5, Locked: true},
	}
	if diff := cmp.Diff(want, bookOf(b)); diff != "" {
		t.Errorf("accounts mismatch (-want +got):\n%s", diff)
	}

	other := NewBook()
	other.GetOrCreate(3)
	if err := b.Merge(other); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d after merge, want 3", b.Len())
	}
	if err := b.Merge(other); err == nil {
		t.Errorf("Merge() of overlapping books succeeded, want an error")
	}
}

func TestDisputes(t *testing.T) {
	d := NewDisputes()
	if d.State(1) != NotDisputed {
		t.Errorf("State(1) = %v, want %v", d.State(1), NotDisputed)
	}
	d.set(1, Disputed)
	d.set(2, Disputed)
	d.set(3, ChargedBack)
	if d.Open() != 2 {
		t.Errorf("Open() = %d, want 2", d.Open())
	}
	d.set(1, NotDisputed)
	if d.State(1) != NotDisputed || d.Open() != 1 {
		t.Errorf("after resolve: State(1) = %v, Open() = %d", d.State(1), d.Open())
	}
}
