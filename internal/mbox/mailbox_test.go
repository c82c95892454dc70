package mbox

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArchive(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mbox")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func threeMessageArchive() string {
	return strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"Subject: One",
		"",
		"Body1",
		"",
		"From bob@example.com Mon Jan 1 00:00:01 2024",
		"Subject: Two",
		"",
		"Body2",
		"",
		"From carol@example.com Mon Jan 1 00:00:02 2024",
		"Subject: Three",
		"",
		"Body3",
		"",
	}, "\n")
}

func TestMailboxScanAssignsKeysInFileOrder(t *testing.T) {
	mb, err := Open(writeArchive(t, threeMessageArchive()))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	var keys []Key
	var senders []string
	err = mb.Scan(context.Background(), func(rec *Record) error {
		keys = append(keys, rec.Key)
		senders = append(senders, rec.Sender)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan(): %v", err)
	}

	if len(keys) != 3 || keys[0] != 0 || keys[1] != 1 || keys[2] != 2 {
		t.Fatalf("keys = %v, want [0 1 2]", keys)
	}
	wantSenders := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	for i, want := range wantSenders {
		if senders[i] != want {
			t.Errorf("sender[%d] = %q, want %q", i, senders[i], want)
		}
	}
	if mb.Len() != 3 {
		t.Errorf("Len() = %d, want 3", mb.Len())
	}
	if mb.Size() <= 0 {
		t.Errorf("Size() = %d, want > 0", mb.Size())
	}
}

func TestMailboxGetRereadsMessage(t *testing.T) {
	mb, err := Open(writeArchive(t, threeMessageArchive()))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	var scanned []*Record
	if err := mb.Scan(context.Background(), func(rec *Record) error {
		scanned = append(scanned, rec)
		return nil
	}); err != nil {
		t.Fatalf("Scan(): %v", err)
	}

	for _, want := range scanned {
		got, err := mb.Get(want.Key)
		if err != nil {
			t.Fatalf("Get(%d): %v", want.Key, err)
		}
		if got.Sender != want.Sender {
			t.Errorf("Get(%d) sender = %q, want %q", want.Key, got.Sender, want.Sender)
		}
		if !got.Date.Equal(want.Date) {
			t.Errorf("Get(%d) date = %v, want %v", want.Key, got.Date, want.Date)
		}
		if !bytes.Equal(got.Raw, want.Raw) {
			t.Errorf("Get(%d) raw mismatch:\ngot:\n%s\nwant:\n%s", want.Key, got.Raw, want.Raw)
		}
	}
}

func TestMailboxGetUnknownKey(t *testing.T) {
	mb, err := Open(writeArchive(t, threeMessageArchive()))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	if err := mb.Scan(context.Background(), func(*Record) error { return nil }); err != nil {
		t.Fatalf("Scan(): %v", err)
	}

	if _, err := mb.Get(99); !errors.Is(err, ErrNoSuchKey) {
		t.Fatalf("Get(99) = %v, want ErrNoSuchKey", err)
	}
	if _, err := mb.Get(-1); !errors.Is(err, ErrNoSuchKey) {
		t.Fatalf("Get(-1) = %v, want ErrNoSuchKey", err)
	}
}

func TestMailboxScanStopEarly(t *testing.T) {
	mb, err := Open(writeArchive(t, threeMessageArchive()))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	seen := 0
	err = mb.Scan(context.Background(), func(*Record) error {
		seen++
		if seen == 2 {
			return ErrStopScan
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Scan() = %v, want nil after ErrStopScan", err)
	}
	if seen != 2 {
		t.Fatalf("callback ran %d times, want 2", seen)
	}
}

func TestMailboxScanOnlyOnce(t *testing.T) {
	mb, err := Open(writeArchive(t, threeMessageArchive()))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	if err := mb.Scan(context.Background(), func(*Record) error { return nil }); err != nil {
		t.Fatalf("first Scan(): %v", err)
	}
	if err := mb.Scan(context.Background(), func(*Record) error { return nil }); err == nil {
		t.Fatal("second Scan() succeeded, want error")
	}
}

func TestMailboxScanSkipsOversized(t *testing.T) {
	archive := strings.Join([]string{
		"From big@example.com Mon Jan 1 00:00:00 2024",
		"Subject: " + strings.Repeat("x", 500),
		"",
		"Body",
		"",
		"From small@example.com Mon Jan 1 00:00:01 2024",
		"Subject: Two",
		"",
		"Body2",
		"",
	}, "\n")

	mb, err := OpenWithMaxMessageBytes(writeArchive(t, archive), 64)
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

	if len(senders) != 1 || senders[0] != "small@example.com" {
		t.Fatalf("senders = %v, want only the small message", senders)
	}
	if mb.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", mb.Skipped())
	}
	if mb.Len() != 1 {
		t.Errorf("Len() = %d, want 1", mb.Len())
	}
}

func TestMailboxScanHonorsContext(t *testing.T) {
	mb, err := Open(writeArchive(t, threeMessageArchive()))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := mb.Scan(ctx, func(*Record) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("Scan() = %v, want context.Canceled", err)
	}
}

func TestMailboxScanSkipsPreamble(t *testing.T) {
	archive := "some mailbox preamble\nnot a message\n" + threeMessageArchive()
	mb, err := Open(writeArchive(t, archive))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	defer mb.Close()

	count := 0
	if err := mb.Scan(context.Background(), func(*Record) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("Scan(): %v", err)
	}
	if count != 3 {
		t.Fatalf("scanned %d messages, want 3", count)
	}
}
