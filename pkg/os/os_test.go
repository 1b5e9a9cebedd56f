package os

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckCreateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "run-1")
	if Exists(dir) {
		t.Fatal("fresh temp path already exists")
	}
	if err := CheckCreateDir(dir); err != nil {
		t.Fatal(err)
	}
	if !Exists(dir) {
		t.Fatal("directory was not created")
	}
	// repeat call on an existing directory is a no-op
	if err := CheckCreateDir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestWriteFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "capture.txt")
	if err := WriteFile(name, []byte("P3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "P3\n" {
		t.Fatalf("read back %q", data)
	}
}

func TestGetUserHome(t *testing.T) {
	home, err := GetUserHome()
	if err != nil {
		t.Skipf("no current user in this environment: %v", err)
	}
	if home == "" {
		t.Fatal("empty home directory")
	}
}
