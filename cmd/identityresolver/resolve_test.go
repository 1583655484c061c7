package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadLinesSkipsBlanksAndTrims(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phones.txt")
	if err := os.WriteFile(path, []byte("+911234567890\n\n  +15550100  \n"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	got, err := readLines(path)
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	want := []string{"+911234567890", "+15550100"}
	if len(got) != len(want) {
		t.Fatalf("readLines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("readLines[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
