package txengine

import (
	"errors"
	"fmt"
	"slices"
)

// Recoverable, per-record errors. A record failing with one of them is
// reported and skipped; processing goes on with the next record.
var (
	ErrMalformedRecord   = errors.New("malformed record")
	ErrDuplicateTx       = errors.New("duplicate transaction id")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownTx         = errors.New("unknown transaction")
	ErrUnknownAccount    = errors.New("unknown account")
	ErrClientMismatch    = errors.New("transaction belongs to another client")
	ErrAlreadyDisputed   = errors.New("transaction already disputed")
	ErrNotDisputed       = errors.New("transaction is not disputed")
	ErrChargedBack       = errors.New("transaction was charged back")
	ErrAccountLocked     = errors.New("account is locked")
	ErrAmountOverflow    = errors.New("amount overflow")
)

// reasons lists the recoverable errors in reporting order.
var reasons = []error{
	ErrMalformedRecord,
	ErrDuplicateTx,
	ErrInsufficientFunds,
	ErrUnknownTx,
	ErrUnknownAccount,
	ErrClientMismatch,
	ErrAlreadyDisputed,
	ErrNotDisputed,
	ErrChargedBack,
	ErrAccountLocked,
	ErrAmountOverflow,
}

// Reasons returns the recoverable sentinel errors in reporting order.
func Reasons() []error { return slices.Clone(reasons) }

// Reason returns the recoverable sentinel error wrapped by err, or nil.
func Reason(err error) error {
	for _, r := range reasons {
		if errors.Is(err, r) {
			return r
		}
	}
	return nil
}

// RecordError reports a record that was skipped.
type RecordError struct {
	Line   int     // Line is the 1-based position of the record in its source, 0 if unknown.
	Record *Record // Record is nil when the raw row could not be parsed.
	Err    error
}

func (e *RecordError) Error() string {
	switch {
	case e.Record != nil && e.Line > 0:
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Record, e.Err)
	case e.Record != nil:
		return fmt.Sprintf("%s: %v", e.Record, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *RecordError) Unwrap() error { return e.Err }

// SourceError reports that the record source could not be started or read.
// Unlike RecordError, it aborts processing.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string { return "record source: " + e.Err.Error() }
func (e *SourceError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err only concerns a single record.
func IsRecoverable(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}
