// Package index builds and orders the in-memory message table behind the
// interactive browser. Rows carry decoded header fields and archive keys,
// never raw message bytes; the archive stays the source of truth for
// content.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/randelsr/mbox-navigator/internal/header"
	"github.com/randelsr/mbox-navigator/internal/maildate"
	"github.com/randelsr/mbox-navigator/internal/mbox"
)

// ErrOutOfRange is returned by Row and Lookup when no row matches the
// requested position or label.
var ErrOutOfRange = errors.New("index: row out of range")

// Field names a sortable column.
type Field int

const (
	FieldDate Field = iota
	FieldFrom
	FieldSubject
)

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldFrom:
		return "from"
	case FieldSubject:
		return "subject"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField maps a user-typed column name to a Field.
func ParseField(s string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return FieldDate, true
	case "from":
		return FieldFrom, true
	case "subject":
		return FieldSubject, true
	default:
		return 0, false
	}
}

// Row is one message's index entry.
type Row struct {
	Key         mbox.Key
	Seq         int // position in file order, breaks sort ties
	From        string
	To          string
	Subject     string
	DateDisplay string    // short date when parseable, raw header text otherwise
	DateSort    time.Time // valid only when HasDate
	HasDate     bool
}

// Table is an ordered set of rows. Sort reorders it in place; Filter
// derives a new Table and leaves the receiver untouched.
type Table struct {
	rows []Row
}

// Build scans the archive once and indexes every message. Rows keep file
// order; a malformed message still gets a row with whatever fields decoded.
func Build(ctx context.Context, mb *mbox.Mailbox, log *slog.Logger) (*Table, error) {
	if log == nil {
		log = slog.Default()
	}
	var rows []Row
	err := mb.Scan(ctx, func(rec *mbox.Record) error {
		fs := header.Fields(rec.Raw)
		row := Row{
			Key:     rec.Key,
			Seq:     len(rows),
			From:    fs.From,
			To:      fs.To,
			Subject: fs.Subject,
		}
		if t, ok := maildate.Parse(fs.Date); ok {
			row.DateSort = t
			row.HasDate = true
			row.DateDisplay = t.Format("2006-01-02")
		} else {
			row.DateDisplay = fs.Date
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n := mb.Skipped(); n > 0 {
		log.Warn("skipped oversized messages during indexing", "count", n)
	}
	log.Debug("index built", "messages", len(rows))
	return &Table{rows: rows}, nil
}

// Len reports the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the row at position i in the current ordering.
func (t *Table) Row(i int) (Row, error) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(t.rows))
	}
	return t.rows[i], nil
}

// Lookup returns the row labeled seq in file order, wherever the current
// ordering placed it. The label is the one the table's index column shows.
func (t *Table) Lookup(seq int) (Row, error) {
	for i := range t.rows {
		if t.rows[i].Seq == seq {
			return t.rows[i], nil
		}
	}
	return Row{}, fmt.Errorf("%w: no row labeled %d", ErrOutOfRange, seq)
}

// Page returns up to n rows starting at cursor plus the cursor for the
// following page. Reaching the end wraps the returned cursor to 0, so
// repeated paging cycles through the table.
func (t *Table) Page(cursor, n int) ([]Row, int) {
	if len(t.rows) == 0 || n <= 0 {
		return nil, 0
	}
	if cursor < 0 || cursor >= len(t.rows) {
		cursor = 0
	}
	end := cursor + n
	if end > len(t.rows) {
		end = len(t.rows)
	}
	rows := append([]Row(nil), t.rows[cursor:end]...)
	next := end
	if next >= len(t.rows) {
		next = 0
	}
	return rows, next
}

// PrevStart returns the starting position of the page of size n preceding a
// page that started at lastStart, floored at the top of the table.
func PrevStart(lastStart, n int) int {
	if n < 0 {
		n = 0
	}
	start := lastStart - n
	if start < 0 {
		start = 0
	}
	return start
}

// Sort reorders rows by field. Rows without a date sort key go last in both
// directions; ties fall back to file order, so the ordering is fully
// re-derived from the row set no matter what sorts ran before.
func (t *Table) Sort(field Field, ascending bool) {
	rows := t.rows
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if field == FieldDate && a.HasDate != b.HasDate {
			return a.HasDate
		}
		c := compareRows(a, b, field)
		if c == 0 {
			return a.Seq < b.Seq
		}
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

func compareRows(a, b *Row, field Field) int {
	switch field {
	case FieldDate:
		if !a.HasDate {
			return 0
		}
		switch {
		case a.DateSort.Before(b.DateSort):
			return -1
		case a.DateSort.After(b.DateSort):
			return 1
		default:
			return 0
		}
	case FieldFrom:
		return strings.Compare(a.From, b.From)
	case FieldSubject:
		return strings.Compare(a.Subject, b.Subject)
	default:
		return 0
	}
}

// Filter returns a new table holding rows whose From or Subject contains
// query, case-insensitively, in the current order. The receiver is not
// modified.
func (t *Table) Filter(query string) *Table {
	q := strings.ToLower(query)
	out := &Table{}
	for _, r := range t.rows {
		if strings.Contains(strings.ToLower(r.From), q) ||
			strings.Contains(strings.ToLower(r.Subject), q) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}
