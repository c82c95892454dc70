// Package maildate parses free-form Date header text into timestamps for
// sorting. Real archives carry every format mail software has ever emitted,
// so parsing is layered: the RFC 5322 parser first, then a ladder of layouts
// seen in the wild. Callers treat failure as "undated", never as an error.
package maildate

import (
	"net/mail"
	"strings"
	"time"
)

// layouts lists common non-RFC date shapes, tried after net/mail.ParseDate.
var layouts = []string{
	time.RFC1123Z,                           // "Mon, 02 Jan 2006 15:04:05 -0700"
	time.RFC1123,                            // "Mon, 02 Jan 2006 15:04:05 MST"
	"Mon, 2 Jan 2006 15:04:05 -0700",        // single-digit day
	"Mon, 2 Jan 2006 15:04:05 MST",          // single-digit day, named TZ
	"2 Jan 2006 15:04:05 -0700",             // no weekday
	"2 Jan 2006 15:04:05 MST",               // no weekday, named TZ
	"02 Jan 2006 15:04:05 -0700",            // no weekday, zero-padded
	"02 Jan 2006 15:04:05 MST",              // no weekday, zero-padded, named TZ
	time.RFC822Z,                            // "02 Jan 06 15:04 -0700"
	time.RFC822,                             // "02 Jan 06 15:04 MST"
	time.RFC850,                             // "Monday, 02-Jan-06 15:04:05 MST"
	time.ANSIC,                              // "Mon Jan _2 15:04:05 2006"
	time.UnixDate,                           // "Mon Jan _2 15:04:05 MST 2006"
	"Mon, 02 Jan 2006 15:04:05 -0700 (MST)", // parenthesized TZ
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",  // single-digit day, paren TZ
	time.RFC3339,                            // "2006-01-02T15:04:05Z07:00"
	"2006-01-02T15:04:05Z",                  // ISO 8601 UTC
	"2006-01-02T15:04:05-07:00",             // ISO 8601 with offset
	"2006-01-02 15:04:05 -0700",             // SQL-like
	"2006-01-02 15:04:05",                   // SQL-like without TZ
	"2006-01-02",                            // bare date
}

// Parse attempts to parse free-form date header text. Returns the time in
// UTC and whether parsing succeeded.
func Parse(s string) (time.Time, bool) {
	// Normalize whitespace: split on runs and rejoin.
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}

	if t, err := mail.ParseDate(s); err == nil {
		return t.UTC(), true
	}

	// Strip a trailing parenthesized timezone name like "(UTC)" but keep the
	// numeric offset for parsing.
	base := s
	if idx := strings.LastIndex(s, "("); idx > 0 {
		base = strings.TrimSpace(s[:idx])
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, base); err == nil {
			return t.UTC(), true
		}
	}

	// Some layouts expect the parenthesized part itself.
	if base != s {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}

	return time.Time{}, false
}
