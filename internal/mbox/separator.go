package mbox

import (
	"bytes"
	"strings"
	"time"
)

// separatorDateLayouts covers the ctime-like date variants seen on "From "
// separator lines across mbox producers. Fields are whitespace-normalized
// before parsing, so padded day numbers collapse to single spaces.
var separatorDateLayouts = []string{
	"Mon Jan 2 15:04:05 2006",
	"Mon Jan 2 15:04:05 -0700 2006",
	"Mon Jan 2 15:04:05 -07:00 2006",
	"Mon Jan 2 15:04:05 MST 2006",
	"Mon Jan 2 15:04:05 2006 -0700",
	"Mon Jan 2 15:04:05 2006 -07:00",
	"Mon Jan 2 15:04:05 2006 MST",
	"Mon Jan 2 15:04 2006",
	"Mon Jan 2 15:04 -0700 2006",
	"Mon Jan 2 15:04 -07:00 2006",
	"Mon Jan 2 15:04 MST 2006",
	"Mon Jan 2 15:04 2006 -0700",
	"Mon Jan 2 15:04 2006 -07:00",
	"Mon Jan 2 15:04 2006 MST",
	"Jan 2 15:04:05 2006",
	"Jan 2 15:04:05 -0700 2006",
	"Jan 2 15:04:05 -07:00 2006",
	"Jan 2 15:04:05 MST 2006",
	"Jan 2 15:04:05 2006 -0700",
	"Jan 2 15:04:05 2006 -07:00",
	"Jan 2 15:04:05 2006 MST",
	"Jan 2 15:04 2006",
	"Jan 2 15:04 -0700 2006",
	"Jan 2 15:04 -07:00 2006",
	"Jan 2 15:04 MST 2006",
	"Jan 2 15:04 2006 -0700",
	"Jan 2 15:04 2006 -07:00",
	"Jan 2 15:04 2006 MST",
}

var fromPrefix = []byte("From ")

// parseSeparator reports whether line is an mbox "From " separator and, if
// so, returns the envelope sender and separator timestamp.
//
// The date check is intentionally permissive and doubles as the separator
// heuristic: "From <sender> <ctime-like date> [extra...]" with trailing
// tokens tolerated (some producers append "remote from ..."). An unescaped
// body line of exactly that shape can be misclassified; writers escape such
// lines (">From "), which the reader undoes.
func parseSeparator(line []byte) (sender string, t time.Time, ok bool) {
	if !bytes.HasPrefix(line, fromPrefix) {
		return "", time.Time{}, false
	}
	fields := strings.Fields(string(bytes.TrimRight(line, "\r\n")))
	// Shortest accepted shape: From + sender + four date tokens.
	if len(fields) < 6 || fields[0] != "From" {
		return "", time.Time{}, false
	}

	for _, layout := range separatorDateLayouts {
		n := len(strings.Fields(layout))
		if len(fields) < 2+n {
			continue
		}
		dateStr := strings.Join(fields[2:2+n], " ")
		if t, err := time.Parse(layout, dateStr); err == nil {
			return fields[1], t, true
		}
	}
	return "", time.Time{}, false
}
