// Package pgledger implements a txengine.Ledger backed by a PostgreSQL table.
//
// Deposits of a run are scoped by a run id and deleted when the ledger is
// closed, so the table only acts as an external index while a run lasts.
package pgledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/txengine"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS txengine_deposits (
	run    uuid    NOT NULL,
	tx     bigint  NOT NULL,
	client integer NOT NULL,
	units  bigint  NOT NULL,
	PRIMARY KEY (run, tx)
)`

// Ledger stores deposits in PostgreSQL. It is safe for concurrent use.
type Ledger struct {
	pool *pgxpool.Pool
	run  uuid.UUID
}

var _ txengine.Ledger = (*Ledger)(nil)

// Open connects to the database at connString and prepares the deposits table.
func Open(ctx context.Context, connString string) (*Ledger, error) {
	if connString == "" {
		return nil, fmt.Errorf("pgledger: empty connection string")
	}
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("pgledger: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgledger: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgledger: create schema: %w", err)
	}
	return &Ledger{pool: pool, run: uuid.New()}, nil
}

// Run returns the id scoping this ledger's rows.
func (l *Ledger) Run() uuid.UUID { return l.run }

// RecordDeposit implements txengine.Ledger.
func (l *Ledger) RecordDeposit(ctx context.Context, e txengine.Entry) error {
	tag, err := l.pool.Exec(ctx,
		`INSERT INTO txengine_deposits (run, tx, client, units) VALUES ($1, $2, $3, $4) ON CONFLICT (run, tx) DO NOTHING`,
		l.run.String(), int64(e.Tx), int32(e.Client), e.Amount.Units())
	if err != nil {
		return fmt.Errorf("pgledger: insert tx %d: %w", e.Tx, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tx %d: %w", e.Tx, txengine.ErrDuplicateTx)
	}
	return nil
}

// Lookup implements txengine.Ledger.
func (l *Ledger) Lookup(ctx context.Context, tx txengine.TxID) (txengine.Entry, bool, error) {
	var client int32
	var units int64
	err := l.pool.QueryRow(ctx,
		`SELECT client, units FROM txengine_deposits WHERE run = $1 AND tx = $2`,
		l.run.String(), int64(tx)).Scan(&client, &units)
	if errors.Is(err, pgx.ErrNoRows) {
		return txengine.Entry{}, false, nil
	}
	if err != nil {
		return txengine.Entry{}, false, fmt.Errorf("pgledger: lookup tx %d: %w", tx, err)
	}
	return txengine.Entry{Tx: tx, Client: txengine.ClientID(client), Amount: txengine.A(units)}, true, nil
}

// Close deletes the run's rows and releases the connections.
func (l *Ledger) Close(ctx context.Context) error {
	defer l.pool.Close()
	if _, err := l.pool.Exec(ctx, `DELETE FROM txengine_deposits WHERE run = $1`, l.run.String()); err != nil {
		return fmt.Errorf("pgledger: cleanup run %s: %w", l.run, err)
	}
	return nil
}
