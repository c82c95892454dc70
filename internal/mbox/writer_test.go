package mbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mbox")

	type input struct {
		sender string
		date   time.Time
		raw    string
	}
	inputs := []input{
		{
			sender: "alice@example.com",
			date:   time.Date(2022, time.March, 15, 10, 0, 0, 0, time.UTC),
			raw:    "Subject: One\n\nPlain body\n",
		},
		{
			sender: "bob@example.com",
			date:   time.Date(2023, time.July, 1, 12, 30, 0, 0, time.UTC),
			raw:    "Subject: Two\n\nFrom the top of a line\n>From already quoted\nend\n",
		},
	}

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if w.Path() != path {
		t.Fatalf("Path() = %q, want %q", w.Path(), path)
	}
	for _, in := range inputs {
		if err := w.Append(in.sender, in.date, []byte(in.raw)); err != nil {
			t.Fatalf("Append(): %v", err)
		}
	}
	if w.Count() != len(inputs) {
		t.Fatalf("Count() = %d, want %d", w.Count(), len(inputs))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	mb, err := Open(path)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	var got []*Record
	if err := mb.Scan(context.Background(), func(rec *Record) error {
		got = append(got, rec)
		return nil
	}); err != nil {
		t.Fatalf("Scan(): %v", err)
	}

	if len(got) != len(inputs) {
		t.Fatalf("read back %d messages, want %d", len(got), len(inputs))
	}
	for i, in := range inputs {
		if got[i].Sender != in.sender {
			t.Errorf("msg %d sender = %q, want %q", i, got[i].Sender, in.sender)
		}
		if !got[i].Date.Equal(in.date) {
			t.Errorf("msg %d date = %v, want %v", i, got[i].Date, in.date)
		}
		// Framing may add a trailing blank line between messages.
		if gotRaw, wantRaw := strings.TrimRight(string(got[i].Raw), "\n"), strings.TrimRight(in.raw, "\n"); gotRaw != wantRaw {
			t.Errorf("msg %d raw mismatch:\ngot:\n%s\nwant:\n%s", i, gotRaw, wantRaw)
		}
	}
}

func TestWriterCreateTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mbox")
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Append("a@example.com", date, []byte("Subject: x\n\nbody\n")); err != nil {
			t.Fatalf("Append(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	w, err = Create(path)
	if err != nil {
		t.Fatalf("second Create(): %v", err)
	}
	if err := w.Append("b@example.com", date, []byte("Subject: y\n\nbody\n")); err != nil {
		t.Fatalf("Append(): %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	mb, err := Open(path)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	count := 0
	if err := mb.Scan(context.Background(), func(rec *Record) error {
		if rec.Sender != "b@example.com" {
			t.Errorf("unexpected sender %q", rec.Sender)
		}
		count++
		return nil
	}); err != nil {
		t.Fatalf("Scan(): %v", err)
	}
	if count != 1 {
		t.Fatalf("scanned %d messages after truncating rewrite, want 1", count)
	}
}

func TestWriterOpenAppendKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mbox")
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if err := w.Append("a@example.com", date, []byte("Subject: x\n\nbody\n")); err != nil {
		t.Fatalf("Append(): %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	w, err = OpenAppend(path)
	if err != nil {
		t.Fatalf("OpenAppend(): %v", err)
	}
	if err := w.Append("b@example.com", date, []byte("Subject: y\n\nbody\n")); err != nil {
		t.Fatalf("Append(): %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	mb, err := Open(path)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	var senders []string
	if err := mb.Scan(context.Background(), func(rec *Record) error {
		senders = append(senders, rec.Sender)
		return nil
	}); err != nil {
		t.Fatalf("Scan(): %v", err)
	}
	if len(senders) != 2 || senders[0] != "a@example.com" || senders[1] != "b@example.com" {
		t.Fatalf("senders = %v", senders)
	}
}

func TestWriterCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mbox")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close(): %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("archive missing after Close: %v", err)
	}
}
