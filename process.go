package txengine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reader produces records in order.
//
// Read returns io.EOF after the last record. A *RecordError means a single
// row was skipped and reading may go on; any other error is fatal.
type Reader interface {
	Read() (Record, error)
}

// Stats summarizes a run.
type Stats struct {
	Applied  int
	Rejected map[error]int // Rejected counts skipped records by recoverable sentinel error.
}

// Skipped returns the total number of rejected records.
func (s Stats) Skipped() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

func (s *Stats) reject(err error) {
	if s.Rejected == nil {
		s.Rejected = make(map[error]int)
	}
	s.Rejected[Reason(err)]++
}

func (s *Stats) add(o Stats) {
	s.Applied += o.Applied
	for k, v := range o.Rejected {
		if s.Rejected == nil {
			s.Rejected = make(map[error]int)
		}
		s.Rejected[k] += v
	}
}

// Options configure a run.
type Options struct {
	// Log receives rejected records at warn level. Nil discards them.
	Log *zap.Logger
	// OnReject, if set, is called for every skipped record.
	OnReject func(*RecordError)
}

func (o Options) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// Process applies every record of r to e until r is exhausted.
//
// Rejected records are reported and skipped. The returned error is only set
// for fatal conditions: the source failed or the ledger could not be reached.
func Process(ctx context.Context, r Reader, e *Engine, opts Options) (Stats, error) {
	var stats Stats
	log := opts.logger()
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec, err := r.Read()
		line++
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			var re *RecordError
			if !errors.As(err, &re) {
				return stats, &SourceError{Err: err}
			}
			stats.reject(re)
			report(log, opts, re)
			continue
		}

		if err := e.Apply(ctx, rec); err != nil {
			if Reason(err) == nil {
				return stats, fmt.Errorf("applying %s: %w", rec, err)
			}
			re := &RecordError{Line: lineOf(r, line), Record: &rec, Err: err}
			stats.reject(re)
			report(log, opts, re)
			continue
		}
		stats.Applied++
	}
}

// lineOf returns the source position of the last record read, if r knows it.
func lineOf(r Reader, fallback int) int {
	if p, ok := r.(interface{ Line() int }); ok {
		return p.Line()
	}
	return fallback
}

func report(log *zap.Logger, opts Options, re *RecordError) {
	fields := []zap.Field{zap.Int("line", re.Line), zap.Error(re.Err)}
	if re.Record != nil {
		fields = append(fields,
			zap.String("kind", string(re.Record.Kind)),
			zap.Uint16("client", uint16(re.Record.Client)),
			zap.Uint32("tx", uint32(re.Record.Tx)),
		)
	}
	log.Warn("record skipped", fields...)
	if opts.OnReject != nil {
		opts.OnReject(re)
	}
}

// shardRecord is a record routed to a shard, with its source line.
type shardRecord struct {
	line int
	rec  Record
}

// ProcessSharded is like Process but applies records on workers goroutines.
//
// Records are partitioned by client id, so each client's records are applied
// in input order by a single worker owning that client's accounts. The ledger
// is shared by all workers and must be safe for concurrent use.
// The returned Book holds the accounts of every worker.
func ProcessSharded(ctx context.Context, r Reader, ledger Ledger, workers int, opts Options) (*Book, Stats, error) {
	if workers < 1 {
		workers = 1
	}
	log := opts.logger()

	g, ctx := errgroup.WithContext(ctx)

	engines := make([]*Engine, workers)
	stats := make([]Stats, workers)
	inputs := make([]chan shardRecord, workers)
	// Rejections are counted and reported by a single goroutine.
	rejects := make(chan *RecordError, workers)

	for i := range workers {
		engines[i] = NewEngine(ledger, log.With(zap.Int("shard", i)))
		inputs[i] = make(chan shardRecord, 64)
		g.Go(func() error {
			for sr := range inputs[i] {
				err := engines[i].Apply(ctx, sr.rec)
				if err == nil {
					stats[i].Applied++
					continue
				}
				if Reason(err) == nil {
					return fmt.Errorf("applying %s: %w", sr.rec, err)
				}
				rec := sr.rec
				select {
				case rejects <- &RecordError{Line: sr.line, Record: &rec, Err: err}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	var total Stats
	done := make(chan struct{})
	go func() {
		defer close(done)
		for re := range rejects {
			total.reject(re)
			report(log, opts, re)
		}
	}()

	g.Go(func() error {
		defer func() {
			for _, in := range inputs {
				close(in)
			}
		}()
		line := 0
		for {
			rec, err := r.Read()
			line++
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				var re *RecordError
				if !errors.As(err, &re) {
					return &SourceError{Err: err}
				}
				select {
				case rejects <- re:
				case <-ctx.Done():
					return ctx.Err()
				}
				continue
			}
			select {
			case inputs[int(rec.Client)%workers] <- shardRecord{line: lineOf(r, line), rec: rec}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	err := g.Wait()
	close(rejects)
	<-done

	book := NewBook()
	for i, e := range engines {
		total.add(stats[i])
		if mergeErr := book.Merge(e.Book()); mergeErr != nil && err == nil {
			err = mergeErr
		}
	}
	return book, total, err
}
