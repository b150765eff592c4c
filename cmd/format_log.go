package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/txengine"
	"github.com/google/subcommands"
)

type formatLogCmd struct {
	out io.Writer // stdout if nil
}

func (*formatLogCmd) Name() string { return "format-log" }
func (*formatLogCmd) Synopsis() string {
	return "rewrite a transaction log in canonical JSONL form"
}
func (*formatLogCmd) Usage() string {
	return `txe [-format csv|jsonl] format-log <file>

  Reads the transaction log and prints every well-formed record as a JSON
  object, one per line, with normalized types and amounts. The records are
  not applied. Malformed rows are reported on stderr and left out.
`
}

func (c *formatLogCmd) SetFlags(f *flag.FlagSet) {}

func (c *formatLogCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := inputPath(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	r, closeReader, err := openReader(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", path, err)
		return subcommands.ExitFailure
	}
	defer closeReader()

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	status := subcommands.ExitSuccess
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return status
		}
		if txengine.IsRecoverable(err) {
			fmt.Fprintln(os.Stderr, err)
			status = subcommands.ExitFailure
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		b, err := rec.MarshalJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding %s: %v\n", rec, err)
			return subcommands.ExitFailure
		}
		w.Write(b)
		w.WriteByte('\n')
	}
}
