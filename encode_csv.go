package txengine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names of the CSV input.
const (
	colType   = "type"
	colClient = "client"
	colTx     = "tx"
	colAmount = "amount"
)

// CSVReader reads records from a CSV stream with a header line.
//
// Columns are located by name; surrounding spaces are ignored and the amount
// column may be omitted entirely on rows that don't need it.
type CSVReader struct {
	r       *csv.Reader
	columns map[string]int
	line    int
}

// NewCSVReader reads the header line of r. A missing or incomplete header is
// reported as a *SourceError.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SourceError{Err: errors.New("missing header line")}
	}
	if err != nil {
		return nil, &SourceError{Err: fmt.Errorf("cannot read header: %w", err)}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colType, colClient, colTx} {
		if _, ok := columns[required]; !ok {
			return nil, &SourceError{Err: fmt.Errorf("header has no %q column", required)}
		}
	}
	return &CSVReader{r: cr, columns: columns, line: 1}, nil
}

// Line returns the line of the last record read.
func (c *CSVReader) Line() int { return c.line }

// Read implements Reader.
func (c *CSVReader) Read() (Record, error) {
	row, err := c.r.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			c.line = perr.Line
			return Record{}, &RecordError{Line: perr.Line, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, perr.Err)}
		}
		return Record{}, err
	}
	c.line, _ = c.r.FieldPos(0)

	field := func(name string) string {
		i, ok := c.columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	rec, err := ParseRecord(RawRecord{
		Kind:   field(colType),
		Client: field(colClient),
		Tx:     field(colTx),
		Amount: field(colAmount),
	})
	if err != nil {
		return Record{}, &RecordError{Line: c.line, Err: err}
	}
	return rec, nil
}

// EncodeBook writes the accounts of book as CSV, in ascending client order.
func EncodeBook(w io.Writer, book *Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for acc := range book.Accounts() {
		row := []string{
			strconv.FormatUint(uint64(acc.Client), 10),
			acc.Available.String(),
			acc.Held.String(),
			acc.Total().String(),
			strconv.FormatBool(acc.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write account %d: %w", acc.Client, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
