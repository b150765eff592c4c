package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/txengine"
	"github.com/google/subcommands"
)

type checkCmd struct {
	out io.Writer // stdout if nil
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "list the transactions that would be skipped" }
func (*checkCmd) Usage() string {
	return `txe check <file>

  Applies the transaction log and lists every skipped transaction with the
  reason it was refused. Exits with a failure status if any was skipped.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := inputPath(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	_, stats, err := run(ctx, path, txengine.Options{
		OnReject: func(re *txengine.RecordError) { fmt.Fprintln(out, re) },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", path, err)
		return subcommands.ExitFailure
	}
	if n := stats.Skipped(); n > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d transactions skipped\n", n, n+stats.Applied)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ all %d transactions applied\n", stats.Applied)
	return subcommands.ExitSuccess
}
