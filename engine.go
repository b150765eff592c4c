package txengine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Engine applies records, one at a time and in input order, to a book of accounts.
//
// The state transitions themselves are plain functions over an explicit
// ledger, dispute tracker and book; the Engine only owns them for a run and
// dispatches records.
type Engine struct {
	ledger   Ledger
	disputes *Disputes
	book     *Book
	log      *zap.Logger
}

// NewEngine creates an engine with an empty book, storing deposits in ledger.
// A nil logger discards all logs.
func NewEngine(ledger Ledger, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		ledger:   ledger,
		disputes: NewDisputes(),
		book:     NewBook(),
		log:      log,
	}
}

// Book returns the engine's account book.
func (e *Engine) Book() *Book { return e.book }

// Disputes returns the engine's dispute tracker.
func (e *Engine) Disputes() *Disputes { return e.disputes }

// Apply applies r.
//
// A non-nil error means r was rejected and left every state unchanged; it
// wraps one of the recoverable sentinel errors, unless the ledger itself failed.
func (e *Engine) Apply(ctx context.Context, r Record) error {
	var err error
	switch r.Kind {
	case KindDeposit:
		err = deposit(ctx, e.ledger, e.book, r)
	case KindWithdrawal:
		err = withdraw(e.book, r)
	case KindDispute:
		err = dispute(ctx, e.ledger, e.disputes, e.book, r)
		if err == nil {
			if acc := e.book.Get(r.Client); acc.Available.IsNegative() {
				e.log.Warn("available balance is negative during dispute",
					zap.Uint16("client", uint16(r.Client)),
					zap.Uint32("tx", uint32(r.Tx)),
					zap.Stringer("available", acc.Available),
				)
			}
		}
	case KindResolve:
		err = resolve(ctx, e.ledger, e.disputes, e.book, r)
	case KindChargeback:
		err = chargeback(ctx, e.ledger, e.disputes, e.book, r)
	default:
		err = fmt.Errorf("%w: unknown transaction type %q", ErrMalformedRecord, r.Kind)
	}
	if err != nil {
		return err
	}
	e.log.Debug("applied", zap.Stringer("record", r))
	return nil
}

// deposit credits r.Amount to the client's account and records it in the ledger.
func deposit(ctx context.Context, ledger Ledger, book *Book, r Record) error {
	if _, exists, err := ledger.Lookup(ctx, r.Tx); err != nil {
		return fmt.Errorf("ledger lookup: %w", err)
	} else if exists {
		return fmt.Errorf("tx %d: %w", r.Tx, ErrDuplicateTx)
	}

	acc := Account{Client: r.Client}
	if existing := book.Get(r.Client); existing != nil {
		acc = *existing
	}
	if acc.Locked {
		return fmt.Errorf("client %d: %w", r.Client, ErrAccountLocked)
	}
	acc, err := acc.credit(r.Amount)
	if err != nil {
		return err
	}
	if err := ledger.RecordDeposit(ctx, Entry{Tx: r.Tx, Client: r.Client, Amount: r.Amount}); err != nil {
		return err
	}
	book.put(acc)
	return nil
}

// withdraw debits r.Amount from the client's available funds.
func withdraw(book *Book, r Record) error {
	existing := book.Get(r.Client)
	if existing == nil {
		return fmt.Errorf("client %d: %w", r.Client, ErrUnknownAccount)
	}
	if existing.Locked {
		return fmt.Errorf("client %d: %w", r.Client, ErrAccountLocked)
	}
	acc, err := existing.debit(r.Amount)
	if err != nil {
		return err
	}
	book.put(acc)
	return nil
}

// disputed returns the ledger entry referenced by r and the client's account.
// It checks that the referenced deposit exists and belongs to r.Client.
func disputed(ctx context.Context, ledger Ledger, book *Book, r Record) (Entry, *Account, error) {
	entry, ok, err := ledger.Lookup(ctx, r.Tx)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("ledger lookup: %w", err)
	}
	if !ok {
		return Entry{}, nil, fmt.Errorf("tx %d: %w", r.Tx, ErrUnknownTx)
	}
	if entry.Client != r.Client {
		return Entry{}, nil, fmt.Errorf("tx %d owned by client %d: %w", r.Tx, entry.Client, ErrClientMismatch)
	}
	acc := book.Get(r.Client)
	if acc == nil {
		return Entry{}, nil, fmt.Errorf("client %d: %w", r.Client, ErrUnknownAccount)
	}
	return entry, acc, nil
}

// dispute holds the amount of the referenced deposit.
func dispute(ctx context.Context, ledger Ledger, disputes *Disputes, book *Book, r Record) error {
	entry, acc, err := disputed(ctx, ledger, book, r)
	if err != nil {
		return err
	}
	switch disputes.State(r.Tx) {
	case Disputed:
		return fmt.Errorf("tx %d: %w", r.Tx, ErrAlreadyDisputed)
	case ChargedBack:
		return fmt.Errorf("tx %d: %w", r.Tx, ErrChargedBack)
	}
	next, err := acc.hold(entry.Amount)
	if err != nil {
		return err
	}
	book.put(next)
	disputes.set(r.Tx, Disputed)
	return nil
}

// openDispute is like disputed but also requires the transaction to be under dispute.
func openDispute(ctx context.Context, ledger Ledger, disputes *Disputes, book *Book, r Record) (Entry, *Account, error) {
	entry, acc, err := disputed(ctx, ledger, book, r)
	if err != nil {
		return Entry{}, nil, err
	}
	switch disputes.State(r.Tx) {
	case Disputed:
		return entry, acc, nil
	case ChargedBack:
		return Entry{}, nil, fmt.Errorf("tx %d: %w", r.Tx, ErrChargedBack)
	default:
		return Entry{}, nil, fmt.Errorf("tx %d: %w", r.Tx, ErrNotDisputed)
	}
}

// resolve releases the held amount of a disputed deposit.
func resolve(ctx context.Context, ledger Ledger, disputes *Disputes, book *Book, r Record) error {
	entry, acc, err := openDispute(ctx, ledger, disputes, book, r)
	if err != nil {
		return err
	}
	next, err := acc.release(entry.Amount)
	if err != nil {
		return err
	}
	book.put(next)
	disputes.set(r.Tx, NotDisputed)
	return nil
}

// chargeback reverses a disputed deposit and locks the account.
func chargeback(ctx context.Context, ledger Ledger, disputes *Disputes, book *Book, r Record) error {
	entry, acc, err := openDispute(ctx, ledger, disputes, book, r)
	if err != nil {
		return err
	}
	next, err := acc.reverse(entry.Amount)
	if err != nil {
		return err
	}
	book.put(next)
	disputes.set(r.Tx, ChargedBack)
	return nil
}
