package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/randelsr/mbox-navigator/internal/mbox"
)

func TestWriteArchiveDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mbox")
	b := filepath.Join(dir, "b.mbox")

	if _, err := writeArchive(a, 50, 42, 2019, 2022); err != nil {
		t.Fatalf("writeArchive: %v", err)
	}
	if _, err := writeArchive(b, 50, 42, 2019, 2022); err != nil {
		t.Fatalf("writeArchive: %v", err)
	}

	da, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(da, db) {
		t.Error("same seed produced different archives")
	}
}

func TestWriteArchiveScannable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.mbox")
	const want = 80

	n, err := writeArchive(path, want, 7, 2018, 2024)
	if err != nil {
		t.Fatalf("writeArchive: %v", err)
	}
	if n != want {
		t.Fatalf("wrote %d messages, want %d", n, want)
	}

	mb, err := mbox.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer mb.Close()

	got := 0
	err = mb.Scan(context.Background(), func(rec *mbox.Record) error {
		got++
		if rec.Sender == "" {
			t.Errorf("message %d has empty sender", int(rec.Key))
		}
		if rec.Date.Year() < 2018 || rec.Date.Year() > 2024 {
			t.Errorf("message %d separator year %d out of range", int(rec.Key), rec.Date.Year())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got != want {
		t.Errorf("scanned %d messages, want %d", got, want)
	}
}
