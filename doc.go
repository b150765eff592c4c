// Package txengine computes client account balances from an ordered log of
// transactions.
//
// A log is a sequence of records: deposits and withdrawals move funds, while
// disputes, resolves and chargebacks reference a prior deposit to hold,
// release or reverse its funds. A chargeback locks the account for good.
//
// The Engine applies records one at a time. A record that cannot be applied
// is rejected with a *RecordError wrapping one of the sentinel errors (see
// Reasons) and leaves every account unchanged; processing goes on. Only a
// failing source or ledger stops a run.
//
// Amounts are exact fixed-point numbers with four fractional digits.
//
// Sources are read by CSVReader and JSONLReader. Deposits are remembered by a
// Ledger: MemLedger in memory, or the pgledger package for PostgreSQL.
// Process runs a single engine, ProcessSharded spreads clients over several.
package txengine
