// Package cmd implements the CLI application computing client balances from a transaction log.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/txengine"
	"github.com/etnz/txengine/pgledger"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&processCmd{}, "transactions")
	c.Register(&checkCmd{}, "transactions")
	c.Register(&formatLogCmd{}, "transactions")
	c.Register(&summaryCmd{}, "reports")
}

// Environment variables providing defaults for the global flags.
const (
	EnvFormat    = "TXE_FORMAT"
	EnvWorkers   = "TXE_WORKERS"
	EnvLedgerDSN = "TXE_LEDGER_DSN"
	EnvCurrency  = "TXE_CURRENCY"
	EnvVerbose   = "TXE_VERBOSE"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var inputFormat = flag.String("format", envString(EnvFormat, "csv"), "Input format: csv or jsonl.")
var workers = flag.Int("workers", envInt(EnvWorkers, 1), "Number of workers applying records, partitioned by client.")
var ledgerDSN = flag.String("ledger-dsn", os.Getenv(EnvLedgerDSN), "PostgreSQL connection string for the deposits index. In memory if empty.")
var Verbose = flag.Bool("v", envBool(EnvVerbose), "Log every applied record.")

func envString(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return def
	}
	return v
}

func envBool(name string) bool {
	v, _ := strconv.ParseBool(os.Getenv(name))
	return v
}

// newLogger creates the stderr logger of a run.
func newLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if *Verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil // every skipped record must be reported
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("run", uuid.NewString())), nil
}

// openReader opens the transaction log at path in the configured format.
func openReader(path string) (txengine.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &txengine.SourceError{Err: err}
	}
	var r txengine.Reader
	switch *inputFormat {
	case "csv":
		r, err = txengine.NewCSVReader(f)
	case "jsonl":
		r, err = txengine.NewJSONLReader(f, txengine.DefaultJSONLFields)
	default:
		err = fmt.Errorf("unknown input format %q", *inputFormat)
	}
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f.Close, nil
}

// openLedger returns the deposits index: PostgreSQL if a DSN is configured, memory otherwise.
func openLedger(ctx context.Context) (txengine.Ledger, func(context.Context) error, error) {
	if *ledgerDSN == "" {
		return txengine.NewLedger(), func(context.Context) error { return nil }, nil
	}
	l, err := pgledger.Open(ctx, *ledgerDSN)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Close, nil
}

// run applies the transaction log at path and returns the final accounts.
//
// The returned error is only set for fatal conditions; skipped records are
// logged and counted in the stats.
func run(ctx context.Context, path string, opts txengine.Options) (*txengine.Book, txengine.Stats, error) {
	log, err := newLogger()
	if err != nil {
		return nil, txengine.Stats{}, fmt.Errorf("cannot create logger: %w", err)
	}
	defer log.Sync()
	opts.Log = log.With(zap.String("source", path))

	r, closeReader, err := openReader(path)
	if err != nil {
		return nil, txengine.Stats{}, err
	}
	defer closeReader()

	ledger, closeLedger, err := openLedger(ctx)
	if err != nil {
		return nil, txengine.Stats{}, err
	}
	defer func() {
		if err := closeLedger(context.WithoutCancel(ctx)); err != nil {
			log.Error("closing ledger", zap.Error(err))
		}
	}()

	if *workers > 1 {
		return txengine.ProcessSharded(ctx, r, ledger, *workers, opts)
	}
	engine := txengine.NewEngine(ledger, opts.Log)
	stats, err := txengine.Process(ctx, r, engine, opts)
	return engine.Book(), stats, err
}

// inputPath returns the single positional argument, or reports a usage error.
func inputPath(f *flag.FlagSet) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected one input file, received %d arguments\n", f.NArg())
		return "", false
	}
	return f.Arg(0), true
}
