package txengine

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is a typed string identifying the kind of a transaction record.
type Kind string

// Kinds of transaction records.
const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// Kinds lists all kinds in their canonical order.
var Kinds = []Kind{KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback}

// ParseKind parses a kind token, ignoring case and surrounding spaces.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// HasAmount reports whether records of this kind carry an amount.
//
// Dispute, resolve and chargeback reference a prior transaction instead.
func (k Kind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction. It is globally unique for deposits and withdrawals.
type TxID uint32

// Record is one validated input event.
//
// Amount is only meaningful when Kind.HasAmount() is true.
type Record struct {
	Kind   Kind
	Client ClientID
	Tx     TxID
	Amount Amount
}

// NewDeposit creates a deposit record.
func NewDeposit(client ClientID, tx TxID, amount Amount) Record {
	return Record{Kind: KindDeposit, Client: client, Tx: tx, Amount: amount}
}

// NewWithdrawal creates a withdrawal record.
func NewWithdrawal(client ClientID, tx TxID, amount Amount) Record {
	return Record{Kind: KindWithdrawal, Client: client, Tx: tx, Amount: amount}
}

// NewDispute creates a dispute record referencing transaction tx.
func NewDispute(client ClientID, tx TxID) Record {
	return Record{Kind: KindDispute, Client: client, Tx: tx}
}

// NewResolve creates a resolve record referencing transaction tx.
func NewResolve(client ClientID, tx TxID) Record {
	return Record{Kind: KindResolve, Client: client, Tx: tx}
}

// NewChargeback creates a chargeback record referencing transaction tx.
func NewChargeback(client ClientID, tx TxID) Record {
	return Record{Kind: KindChargeback, Client: client, Tx: tx}
}

func (r Record) String() string {
	if r.Kind.HasAmount() {
		return fmt.Sprintf("%s client=%d tx=%d amount=%s", r.Kind, r.Client, r.Tx, r.Amount)
	}
	return fmt.Sprintf("%s client=%d tx=%d", r.Kind, r.Client, r.Tx)
}

// RawRecord holds the textual fields of a record as read from a source.
// An empty Amount means the amount is absent.
type RawRecord struct {
	Kind   string
	Client string
	Tx     string
	Amount string
}

// ParseRecord validates raw fields into a Record.
//
// Every failure wraps ErrMalformedRecord.
func ParseRecord(raw RawRecord) (Record, error) {
	kind, err := ParseKind(raw.Kind)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	client, err := strconv.ParseUint(strings.TrimSpace(raw.Client), 10, 16)
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid client id %q", ErrMalformedRecord, raw.Client)
	}
	tx, err := strconv.ParseUint(strings.TrimSpace(raw.Tx), 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid transaction id %q", ErrMalformedRecord, raw.Tx)
	}

	rec := Record{Kind: kind, Client: ClientID(client), Tx: TxID(tx)}

	amount := strings.TrimSpace(raw.Amount)
	switch {
	case kind.HasAmount() && amount == "":
		return Record{}, fmt.Errorf("%w: %s requires an amount", ErrMalformedRecord, kind)
	case !kind.HasAmount() && amount != "":
		return Record{}, fmt.Errorf("%w: %s must not carry an amount", ErrMalformedRecord, kind)
	case kind.HasAmount():
		a, err := ParseAmount(amount)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		if a.IsNegative() {
			return Record{}, fmt.Errorf("%w: %s amount must not be negative, got %s", ErrMalformedRecord, kind, a)
		}
		rec.Amount = a
	}
	return rec, nil
}
