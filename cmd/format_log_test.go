package cmd

import (
	"bytes"
	"testing"

	"github.com/google/subcommands"
)

func TestFormatLogCmd(t *testing.T) {
	path := createTempLog(t, "tx.csv", `type,client,tx,amount
 Deposit , 1, 1, 1.5
dispute,1,1,
withdrawal,1,2,
resolve,1,1
`)

	var out bytes.Buffer
	status := execute(t, &formatLogCmd{out: &out}, path)

	// The withdrawal has no amount.
	if status != subcommands.ExitFailure {
		t.Errorf("Expected ExitFailure, got %v", status)
	}
	want := `{"type":"deposit","client":1,"tx":1,"amount":1.5000}
{"type":"dispute","client":1,"tx":1}
{"type":"resolve","client":1,"tx":1}
`
	if got := out.String(); got != want {
		t.Errorf("Unexpected output.\nExpected:\n%s\nGot:\n%s", want, got)
	}
}
