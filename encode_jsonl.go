package txengine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// JSONLFields holds the JSONPath expressions locating each record field in a JSON object.
type JSONLFields struct {
	Kind   string
	Client string
	Tx     string
	Amount string
}

// DefaultJSONLFields reads flat objects like {"type":"deposit","client":1,"tx":1,"amount":1.5}.
var DefaultJSONLFields = JSONLFields{
	Kind:   "$.type",
	Client: "$.client",
	Tx:     "$.tx",
	Amount: "$.amount",
}

type jsonEval = func(context.Context, any) (any, error)

// MaxJSONLLineSize is the longest line a JSONLReader accepts. Longer lines are
// skipped as malformed records.
const MaxJSONLLineSize = 1 << 20

// JSONLReader reads records from a stream of JSON objects, one per line.
//
// Numbers are decoded exactly: amounts never go through a float.
type JSONLReader struct {
	r    *bufio.Reader
	buf  []byte
	line int

	kind, client, tx, amount jsonEval
}

// NewJSONLReader creates a reader locating fields with the given JSONPath expressions.
// Invalid expressions are reported as a *SourceError.
func NewJSONLReader(r io.Reader, fields JSONLFields) (*JSONLReader, error) {
	compile := func(name, path string) (jsonEval, error) {
		eval, err := jsonpath.New(path)
		if err != nil {
			return nil, &SourceError{Err: fmt.Errorf("invalid %s path %q: %w", name, path, err)}
		}
		return eval, nil
	}
	jr := &JSONLReader{r: bufio.NewReader(r)}
	var err error
	if jr.kind, err = compile("type", fields.Kind); err != nil {
		return nil, err
	}
	if jr.client, err = compile("client", fields.Client); err != nil {
		return nil, err
	}
	if jr.tx, err = compile("tx", fields.Tx); err != nil {
		return nil, err
	}
	if jr.amount, err = compile("amount", fields.Amount); err != nil {
		return nil, err
	}
	return jr, nil
}

// Line returns the line of the last record read.
func (j *JSONLReader) Line() int { return j.line }

// Read implements Reader.
func (j *JSONLReader) Read() (Record, error) {
	for {
		line, tooLong, err := j.readLine()
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("error reading from input: %w", err)
		}
		j.line++
		if tooLong {
			return Record{}, &RecordError{Line: j.line, Err: fmt.Errorf("%w: line longer than %d bytes", ErrMalformedRecord, MaxJSONLLineSize)}
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue // Skip empty lines
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var jobj any
		if err := dec.Decode(&jobj); err != nil {
			return Record{}, &RecordError{Line: j.line, Err: fmt.Errorf("%w: not a correct json: %v", ErrMalformedRecord, err)}
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return Record{}, &RecordError{Line: j.line, Err: fmt.Errorf("%w: unexpected data after the json value", ErrMalformedRecord)}
		}

		rec, err := ParseRecord(RawRecord{
			Kind:   jsonField(j.kind, jobj),
			Client: jsonField(j.client, jobj),
			Tx:     jsonField(j.tx, jobj),
			Amount: jsonField(j.amount, jobj),
		})
		if err != nil {
			return Record{}, &RecordError{Line: j.line, Err: err}
		}
		return rec, nil
	}
}

// readLine returns the next line, and whether it was longer than
// MaxJSONLLineSize. The excess of a long line is read and discarded.
// It returns io.EOF only when no line is left.
func (j *JSONLReader) readLine() ([]byte, bool, error) {
	j.buf = j.buf[:0]
	tooLong := false
	read := false
	for {
		chunk, err := j.r.ReadSlice('\n')
		read = read || len(chunk) > 0
		if tooLong || len(j.buf)+len(chunk) > MaxJSONLLineSize {
			tooLong = true
		} else {
			j.buf = append(j.buf, chunk...)
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && read:
			return j.buf, tooLong, nil
		case err != nil:
			return nil, false, err
		default:
			return j.buf, tooLong, nil
		}
	}
}

// jsonField evaluates a compiled path on jobj and returns its text, or "" when absent.
func jsonField(eval jsonEval, jobj any) string {
	jval, err := eval(context.Background(), jobj)
	if err != nil {
		return ""
	}
	// jsonpath may return a list of 1 answer instead of the answer itself.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return ""
		}
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
