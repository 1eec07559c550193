package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileScoped(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	if err := os.WriteFile(path, []byte("commands: []\n"), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	data, err := ReadFileScoped(path, 0)
	if err != nil {
		t.Fatalf("ReadFileScoped error: %v", err)
	}
	if string(data) != "commands: []\n" {
		t.Fatalf("content = %q", data)
	}

	data, err = ReadFileScoped(path, int64(len("commands: []\n")))
	if err != nil || len(data) != 13 {
		t.Fatalf("read at exact limit: %q, %v", data, err)
	}
}

func TestReadFileScoped_Limit(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "big.yaml")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	_, err := ReadFileScoped(path, 63)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("error = %v, want ErrTooLarge", err)
	}
}

func TestReadFileScoped_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.yaml")},
		{"missing dir", filepath.Join(dir, "nope", "commands.yaml")},
		{"directory", dir},
		{"dot", "."},
		{"root", string(filepath.Separator)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadFileScoped(tt.path, 0); err == nil {
				t.Fatalf("expected error for %q", tt.path)
			}
		})
	}
}
