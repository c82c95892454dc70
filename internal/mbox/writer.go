package mbox

import (
	"fmt"
	"os"
	"time"

	mboxlib "github.com/emersion/go-mbox"
)

// Writer appends messages to an mbox archive. The archive file is held
// under an exclusive advisory lock from open until Close, so concurrent
// cooperating writers serialize rather than interleave.
type Writer struct {
	f      *os.File
	mw     *mboxlib.Writer
	path   string
	count  int
	closed bool
}

// Create opens path for writing, truncating any existing content. Partition
// runs are idempotent because reruns start from an empty archive.
func Create(path string) (*Writer, error) {
	return openWriter(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// OpenAppend opens path for writing, keeping existing content.
func OpenAppend(path string) (*Writer, error) {
	return openWriter(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func openWriter(path string, flag int) (*Writer, error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open archive for writing: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return &Writer{
		f:    f,
		mw:   mboxlib.NewWriter(f),
		path: path,
	}, nil
}

// Append writes one message framed by a fresh "From " separator built from
// sender and date. Raw bytes are escaped by the underlying writer, so body
// lines that look like separators survive a round trip.
func (w *Writer) Append(sender string, date time.Time, raw []byte) error {
	mw, err := w.mw.CreateMessage(sender, date)
	if err != nil {
		return fmt.Errorf("write separator: %w", err)
	}
	if _, err := mw.Write(raw); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	w.count++
	return nil
}

// Count reports the number of messages appended by this Writer.
func (w *Writer) Count() int { return w.count }

// Path reports the archive path as given to Create or OpenAppend.
func (w *Writer) Path() string { return w.path }

// Close flushes the final message, releases the lock, and closes the file.
// Safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var first error
	if err := w.mw.Close(); err != nil {
		first = fmt.Errorf("finish archive: %w", err)
	}
	if err := unlockFile(w.f); err != nil && first == nil {
		first = fmt.Errorf("unlock %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil && first == nil {
		first = fmt.Errorf("close archive: %w", err)
	}
	return first
}
