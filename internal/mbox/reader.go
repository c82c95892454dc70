package mbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

const maxLineBytes = 32 << 20 // 32 MiB

// ErrMessageTooLarge is returned by the stream reader when a single message
// exceeds the configured size cap. The reader stays usable; the next call
// resumes at the following separator.
var ErrMessageTooLarge = errors.New("mbox: message exceeds max size")

// message is one raw message pulled off the stream.
type message struct {
	sender string    // envelope sender from the separator line
	date   time.Time // separator timestamp
	raw    []byte    // headers + body, separator excluded, mboxrd-unescaped
	offset int64     // stream offset of the separator line
}

type offsetReader struct {
	r io.Reader
	n int64
}

func (o *offsetReader) Read(p []byte) (int, error) {
	n, err := o.r.Read(p)
	o.n += int64(n)
	return n, err
}

// reader streams messages off an mbox archive one at a time. Body lines
// matching ^>+From  are unescaped by removing a single '>' (mboxrd); a line
// counts as a separator only when it begins with "From " and carries a
// parseable ctime-like date, which keeps unescaped body text from splitting
// messages.
type reader struct {
	or *offsetReader
	br *bufio.Reader

	// stashed separator for the next message, already parsed
	nextSender string
	nextDate   time.Time
	nextOffset int64
	hasNext    bool
	eof        bool

	maxMessageBytes int64
}

// newReader creates a reader positioned at the stream's current offset. If
// r is seekable the byte offsets reported for each message stay absolute.
// maxMessageBytes <= 0 disables the size cap.
func newReader(r io.Reader, maxMessageBytes int64) *reader {
	or := &offsetReader{r: r}
	if s, ok := r.(io.Seeker); ok {
		if off, err := s.Seek(0, io.SeekCurrent); err == nil {
			or.n = off
		}
	}
	return &reader{
		or:              or,
		br:              bufio.NewReader(or),
		maxMessageBytes: maxMessageBytes,
	}
}

// offset reports the current logical read offset, accounting for buffered
// data.
func (r *reader) offset() int64 {
	return r.or.n - int64(r.br.Buffered())
}

// nextSeparatorOffset reports the stream offset of the next message's
// separator line, or the current offset when no separator is buffered.
func (r *reader) nextSeparatorOffset() int64 {
	if r.hasNext {
		return r.nextOffset
	}
	return r.offset()
}

// next returns the next message from the stream, or io.EOF when the archive
// is exhausted.
func (r *reader) next() (*message, error) {
	if r.eof {
		return nil, io.EOF
	}

	// Find the separator for the next message if one isn't stashed.
	if !r.hasNext {
		for {
			lineStart := r.offset()
			line, err := r.readLineBytes()
			if err != nil && err != io.EOF {
				return nil, err
			}
			if sender, date, ok := parseSeparator(line); ok {
				r.nextSender = sender
				r.nextDate = date
				r.nextOffset = lineStart
				r.hasNext = true
				break
			}
			if err == io.EOF {
				r.eof = true
				return nil, io.EOF
			}
		}
	}

	msg := &message{
		sender: r.nextSender,
		date:   r.nextDate,
		offset: r.nextOffset,
	}
	r.hasNext = false

	var raw bytes.Buffer
	var rawBytes int64
	tooLarge := false

	for {
		lineStart := r.offset()
		line, err := r.readLineBytes()
		if len(line) > 0 {
			if sender, date, ok := parseSeparator(line); ok {
				// Next message's separator; stash it for the next call.
				r.nextSender = sender
				r.nextDate = date
				r.nextOffset = lineStart
				r.hasNext = true
				break
			}

			if !tooLarge {
				b := unescapeFrom(line)
				if r.maxMessageBytes > 0 && rawBytes+int64(len(b)) > r.maxMessageBytes {
					tooLarge = true
				} else {
					raw.Write(b)
					rawBytes += int64(len(b))
				}
			}
		}

		if err != nil {
			if err == io.EOF {
				r.eof = true
				break
			}
			return nil, err
		}
	}

	if tooLarge {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrMessageTooLarge, r.maxMessageBytes)
	}

	msg.raw = raw.Bytes()
	return msg, nil
}

func (r *reader) readLineBytes() ([]byte, error) {
	// ReadBytes returns bufio.ErrBufferFull when the buffer fills before the
	// delimiter shows up. Treat that as a partial line and keep accumulating.
	var out []byte
	for {
		b, err := r.br.ReadBytes('\n')
		out = append(out, b...)
		if len(out) > maxLineBytes {
			return nil, fmt.Errorf("mbox: line exceeds max length (%d bytes)", maxLineBytes)
		}
		if err == nil {
			return out, nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err == io.EOF {
			return out, io.EOF
		}
		if len(out) > 0 {
			return out, err
		}
		return nil, err
	}
}

// unescapeFrom removes a single leading '>' from any line matching ^>+From
// (mboxrd unquoting). This also covers mboxo exports where only ">From "
// appears for originally-"From " lines.
func unescapeFrom(line []byte) []byte {
	if len(line) == 0 || line[0] != '>' {
		return line
	}
	i := 0
	for i < len(line) && line[i] == '>' {
		i++
	}
	if i < len(line) && bytes.HasPrefix(line[i:], []byte("From ")) {
		return line[1:]
	}
	return line
}

// Validate reads up to maxBytes from r and returns an error if no mbox
// separator shows up. This is a heuristic for failing fast on files that are
// not mbox archives at all.
func Validate(r io.Reader, maxBytes int64) error {
	if maxBytes <= 0 {
		return fmt.Errorf("maxBytes must be > 0")
	}
	br := bufio.NewReader(io.LimitReader(r, maxBytes))
	for {
		line, err := br.ReadString('\n')
		if _, _, ok := parseSeparator([]byte(line)); ok {
			return nil
		}
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("no \"From \" separators found (not an mbox file?)")
			}
			return err
		}
	}
}
