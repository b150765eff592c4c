package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// installExtension writes an executable shell script named txe-<name> in a
// directory prepended to PATH.
func installExtension(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "txe-"+name), []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("Failed to write extension: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func TestRunExtension(t *testing.T) {
	dir := installExtension(t, "hello", `
echo "$TXE_FORMAT $TXE_WORKERS $TXE_LEDGER_DSN $TXE_VERBOSE $*" > "$(dirname "$0")/out.txt"
exit 3
`)
	withFlag(t, inputFormat, "jsonl")
	withFlag(t, workers, 4)
	withFlag(t, ledgerDSN, "postgres://localhost/tx")
	withFlag(t, Verbose, true)

	found, code := RunExtension("hello", []string{"a", "b"})
	if !found {
		t.Fatalf("Expected extension txe-hello to be found")
	}
	if code != 3 {
		t.Errorf("Expected exit code 3, got %d", code)
	}
	out, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("Extension did not run: %v", err)
	}
	if got, want := strings.TrimSpace(string(out)), "jsonl 4 postgres://localhost/tx true a b"; got != want {
		t.Errorf("Extension received %q, want %q", got, want)
	}
}

func TestRunExtension_NotFound(t *testing.T) {
	installExtension(t, "hello", "exit 0\n")
	if found, _ := RunExtension("no-such-extension", nil); found {
		t.Errorf("Expected no extension to be found")
	}
}
