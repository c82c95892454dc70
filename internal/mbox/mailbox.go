// Package mbox reads and writes mbox mail archives.
//
// A Mailbox wraps an archive file on disk: one streaming Scan assigns each
// message a Key in file order and records its byte span, after which Get
// rereads any single message without holding the archive in memory. Writer
// appends messages to an archive under an exclusive advisory lock.
package mbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultMaxMessageBytes caps how large a single message may grow before the
// scan skips it. Oversized messages are counted, not fatal.
const DefaultMaxMessageBytes = 128 << 20 // 128 MiB

// ErrNoSuchKey is returned by Get for keys outside the scanned archive.
var ErrNoSuchKey = errors.New("mbox: no such message")

// ErrStopScan stops a Scan early when returned from the callback. Scan
// returns nil.
var ErrStopScan = errors.New("mbox: stop scan")

// Key identifies a message within an open archive. Keys are assigned in
// file order during Scan and stay valid for the lifetime of the Mailbox.
type Key int

// Record is one message read from an archive.
type Record struct {
	Key    Key
	Sender string    // envelope sender from the separator line
	Date   time.Time // separator timestamp
	Raw    []byte    // headers + body, separator excluded, mboxrd-unescaped
}

type span struct {
	start  int64
	length int64
}

// Mailbox is a read session over one mbox archive.
type Mailbox struct {
	f       *os.File
	path    string
	size    int64
	maxMsg  int64
	spans   []span
	scanned bool
	skipped int
}

// Open opens an mbox archive for reading with the default message size cap.
func Open(path string) (*Mailbox, error) {
	return OpenWithMaxMessageBytes(path, DefaultMaxMessageBytes)
}

// OpenWithMaxMessageBytes opens an mbox archive, skipping messages larger
// than maxMessageBytes during Scan. maxMessageBytes <= 0 disables the cap.
func OpenWithMaxMessageBytes(path string, maxMessageBytes int64) (*Mailbox, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	return &Mailbox{
		f:      f,
		path:   path,
		size:   fi.Size(),
		maxMsg: maxMessageBytes,
	}, nil
}

// Scan streams every message in file order, assigning keys as it goes. The
// callback may return ErrStopScan to end the scan early; any other error
// aborts the scan and is returned as-is. Messages over the size cap are
// skipped and counted. Scan may run once per Mailbox; reopen the archive to
// scan again.
func (m *Mailbox) Scan(ctx context.Context, fn func(*Record) error) error {
	if m.scanned {
		return errors.New("mbox: archive already scanned; reopen to rescan")
	}
	m.scanned = true

	if _, err := m.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek archive: %w", err)
	}
	r := newReader(m.f, m.maxMsg)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := r.next()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, ErrMessageTooLarge) {
			m.skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("scan %s: %w", m.path, err)
		}
		rec := &Record{
			Key:    Key(len(m.spans)),
			Sender: msg.sender,
			Date:   msg.date,
			Raw:    msg.raw,
		}
		m.spans = append(m.spans, span{
			start:  msg.offset,
			length: r.nextSeparatorOffset() - msg.offset,
		})
		if err := fn(rec); err != nil {
			if errors.Is(err, ErrStopScan) {
				return nil
			}
			return err
		}
	}
}

// Get rereads a single message by key. The archive must have been scanned.
func (m *Mailbox) Get(key Key) (*Record, error) {
	if int(key) < 0 || int(key) >= len(m.spans) {
		return nil, fmt.Errorf("%w: key %d", ErrNoSuchKey, key)
	}
	sp := m.spans[key]
	r := newReader(io.NewSectionReader(m.f, sp.start, sp.length), m.maxMsg)
	msg, err := r.next()
	if err != nil {
		return nil, fmt.Errorf("reread message %d: %w", key, err)
	}
	return &Record{
		Key:    key,
		Sender: msg.sender,
		Date:   msg.date,
		Raw:    msg.raw,
	}, nil
}

// Len reports the number of messages assigned keys so far.
func (m *Mailbox) Len() int { return len(m.spans) }

// Skipped reports how many messages the scan passed over for exceeding the
// size cap.
func (m *Mailbox) Skipped() int { return m.skipped }

// Size reports the archive file size in bytes at open time.
func (m *Mailbox) Size() int64 { return m.size }

// Path reports the archive path as given to Open.
func (m *Mailbox) Path() string { return m.path }

// Close releases the underlying file. Keys become invalid.
func (m *Mailbox) Close() error {
	return m.f.Close()
}
