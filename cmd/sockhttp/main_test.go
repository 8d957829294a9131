package main

import (
	"os"
	"testing"
)

func TestMain_ExitCodes(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"sockhttp", "drivers", "--no-color"}
	if code := Main(); code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}

	os.Args = []string{"sockhttp", "get"}
	if code := Main(); code != 1 {
		t.Errorf("Expected exit code 1 for missing URL, got %d", code)
	}
}
