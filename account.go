package txengine

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Account is the balance state of one client.
type Account struct {
	Client    ClientID
	Available Amount // Available funds, can be withdrawn.
	Held      Amount // Held funds are under dispute.
	Locked    bool   // Locked is terminal: a charged back account never unlocks.
}

// Total returns available + held.
//
// Account operations never let this sum overflow.
func (a Account) Total() Amount {
	return Amount{units: a.Available.units + a.Held.units}
}

func (a Account) String() string {
	return fmt.Sprintf("client=%d available=%s held=%s total=%s locked=%t", a.Client, a.Available, a.Held, a.Total(), a.Locked)
}

// credit returns a copy of a with amount added to available.
func (a Account) credit(amount Amount) (Account, error) {
	if _, err := a.Total().Add(amount); err != nil {
		return a, err
	}
	available, err := a.Available.Add(amount)
	if err != nil {
		return a, err
	}
	a.Available = available
	return a, nil
}

// debit returns a copy of a with amount taken from available.
// It fails with ErrInsufficientFunds rather than going below zero.
func (a Account) debit(amount Amount) (Account, error) {
	if a.Available.LessThan(amount) {
		return a, fmt.Errorf("available %s, requested %s: %w", a.Available, amount, ErrInsufficientFunds)
	}
	available, err := a.Available.Sub(amount)
	if err != nil {
		return a, err
	}
	a.Available = available
	return a, nil
}

// hold returns a copy of a with amount moved from available to held.
// Available may become negative when the funds were already withdrawn.
func (a Account) hold(amount Amount) (Account, error) {
	available, err := a.Available.Sub(amount)
	if err != nil {
		return a, err
	}
	held, err := a.Held.Add(amount)
	if err != nil {
		return a, err
	}
	a.Available, a.Held = available, held
	return a, nil
}

// release returns a copy of a with amount moved from held back to available.
func (a Account) release(amount Amount) (Account, error) {
	held, err := a.Held.Sub(amount)
	if err != nil {
		return a, err
	}
	available, err := a.Available.Add(amount)
	if err != nil {
		return a, err
	}
	a.Available, a.Held = available, held
	return a, nil
}

// reverse returns a copy of a with amount removed from held, and locked.
func (a Account) reverse(amount Amount) (Account, error) {
	held, err := a.Held.Sub(amount)
	if err != nil {
		return a, err
	}
	a.Held = held
	a.Locked = true
	return a, nil
}

// Book maps client ids to accounts. Accounts are created on first reference.
type Book struct {
	accounts map[ClientID]*Account
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{accounts: make(map[ClientID]*Account)}
}

// Get returns the account of client, or nil if it was never referenced.
func (b *Book) Get(client ClientID) *Account {
	return b.accounts[client]
}

// GetOrCreate returns the account of client, creating an empty one if needed.
func (b *Book) GetOrCreate(client ClientID) *Account {
	acc, ok := b.accounts[client]
	if !ok {
		acc = &Account{Client: client}
		b.accounts[client] = acc
	}
	return acc
}

// put stores a copy of acc.
func (b *Book) put(acc Account) {
	b.accounts[acc.Client] = &acc
}

// Len returns the number of accounts.
func (b *Book) Len() int { return len(b.accounts) }

// Accounts iterates over copies of the accounts in ascending client order.
func (b *Book) Accounts() iter.Seq[Account] {
	return func(yield func(Account) bool) {
		for _, id := range slices.Sorted(maps.Keys(b.accounts)) {
			if !yield(*b.accounts[id]) {
				return
			}
		}
	}
}

// Merge moves all accounts of other into b. Both books must hold disjoint clients.
func (b *Book) Merge(other *Book) error {
	for id, acc := range other.accounts {
		if _, exists := b.accounts[id]; exists {
			return fmt.Errorf("cannot merge books: client %d present in both", id)
		}
		b.accounts[id] = acc
	}
	return nil
}
