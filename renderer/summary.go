package renderer

import (
	"github.com/etnz/txengine"
)

// Summary is the report of a run: the final accounts and what was skipped.
type Summary struct {
	Source     string
	Currency   string
	Applied    int
	Skipped    int
	Locked     int
	Accounts   []Account
	Rejections []Rejection
}

// Account is one line of the accounts table. Amounts are rendered in the display currency.
type Account struct {
	Client    txengine.ClientID
	Available string
	Held      string
	Total     string
	Locked    bool
}

// Rejection counts the records skipped for one reason.
type Rejection struct {
	Reason string
	Count  int
}

// NewSummary builds the summary of a run whose final accounts are in book.
//
// Amounts are converted to currency for display only, rounded to its minor unit.
func NewSummary(source string, book *txengine.Book, stats txengine.Stats, currency string) *Summary {
	s := &Summary{
		Source:   source,
		Currency: currency,
		Applied:  stats.Applied,
		Skipped:  stats.Skipped(),
	}
	for acc := range book.Accounts() {
		if acc.Locked {
			s.Locked++
		}
		s.Accounts = append(s.Accounts, Account{
			Client:    acc.Client,
			Available: acc.Available.Money(currency).Display(),
			Held:      acc.Held.Money(currency).Display(),
			Total:     acc.Total().Money(currency).Display(),
			Locked:    acc.Locked,
		})
	}
	for _, reason := range txengine.Reasons() {
		if n := stats.Rejected[reason]; n > 0 {
			s.Rejections = append(s.Rejections, Rejection{Reason: reason.Error(), Count: n})
		}
	}
	return s
}
