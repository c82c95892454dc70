//go:build darwin || linux

package mbox

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

// tryLock attempts a non-blocking exclusive flock on path from a separate
// file description.
func tryLock(t *testing.T, path string) bool {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open for lock probe: %v", err)
	}
	defer f.Close()
	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return true
	}
	return false
}

func TestWriterHoldsLockUntilClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mbox")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if tryLock(t, path) {
		t.Error("archive lock acquirable while Writer open")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}
	if !tryLock(t, path) {
		t.Error("archive lock still held after Close")
	}
}
