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

type processCmd struct {
	output string
	out    io.Writer // stdout if nil
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "compute client balances from a transaction log" }
func (*processCmd) Usage() string {
	return `txe [-format csv|jsonl] [-workers <n>] [-ledger-dsn <url>] process [-o csv|jsonl] <file>

  Applies every transaction of the log in order and prints the final state
  of each client account: client,available,held,total,locked.
  Invalid or refused transactions are reported on stderr and skipped.
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "csv", "Output format: csv or jsonl.")
}

func (c *processCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := inputPath(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	encode := txengine.EncodeBook
	switch c.output {
	case "csv":
	case "jsonl":
		encode = txengine.EncodeBookJSONL
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q\n", c.output)
		return subcommands.ExitUsageError
	}

	book, _, err := run(ctx, path, txengine.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", path, err)
		return subcommands.ExitFailure
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	if err := encode(out, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
