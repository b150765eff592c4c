package txengine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// jsonObjectWriter helps construct a JSON object with a specific field order.
// Its zero value is ready to use.
type jsonObjectWriter struct {
	bytes.Buffer
	err error
}

// Append adds a new key-value pair to the JSON object. The value is marshaled
// to JSON using `json.Marshal`.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	valBytes, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	keyBytes, _ := json.Marshal(key)
	w.Write(keyBytes)
	w.WriteByte(':')
	w.Write(valBytes)
	w.WriteByte(',')
	return w
}

// MarshalJSON finalizes the JSON object and returns it.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	content := bytes.TrimSuffix(w.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')
	return final, nil
}

// MarshalJSON renders the account with the same fields and order as the CSV output.
func (a Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("client", a.Client).
		Append("available", a.Available).
		Append("held", a.Held).
		Append("total", a.Total()).
		Append("locked", a.Locked)
	return w.MarshalJSON()
}

// MarshalJSON renders the record the way the JSONL reader expects it. The
// amount is omitted on kinds that carry none.
func (r Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", r.Kind).
		Append("client", r.Client).
		Append("tx", r.Tx)
	if r.Kind.HasAmount() {
		w.Append("amount", r.Amount)
	}
	return w.MarshalJSON()
}

// EncodeBookJSONL writes the accounts of book as JSON objects, one per line, in ascending client order.
func EncodeBookJSONL(w io.Writer, book *Book) error {
	bw := bufio.NewWriter(w)
	for acc := range book.Accounts() {
		b, err := acc.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode account %d: %w", acc.Client, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
