package header

import (
	"bytes"
	"net/mail"
	"strings"
)

// Set holds the decoded routing headers of one message. Absent headers are
// empty strings.
type Set struct {
	From    string
	To      string
	Cc      string
	Subject string
	Date    string
}

// Fields extracts the routing headers from a raw message. Well-formed
// header blocks go through net/mail; anything the strict parser rejects is
// retried with a line scanner so a malformed block still yields whatever
// fields it carries.
func Fields(raw []byte) Set {
	if m, err := mail.ReadMessage(bytes.NewReader(raw)); err == nil {
		return Set{
			From:    Decode(m.Header.Get("From")),
			To:      Decode(m.Header.Get("To")),
			Cc:      Decode(m.Header.Get("Cc")),
			Subject: Decode(m.Header.Get("Subject")),
			Date:    Decode(m.Header.Get("Date")),
		}
	}
	return scanFields(raw)
}

// scanFields walks the header block line by line, folding continuations and
// skipping lines it cannot make sense of. The first instance of each header
// wins, matching net/mail.Header.Get.
func scanFields(raw []byte) Set {
	var s Set
	var name, value string
	flush := func() {
		if name != "" {
			s.assign(name, value)
		}
		name, value = "", ""
	}
	for _, line := range strings.Split(headerBlock(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if name != "" {
				value += " " + strings.TrimSpace(line)
			}
			continue
		}
		flush()
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(line[:idx]))
		value = strings.TrimSpace(line[idx+1:])
	}
	flush()
	return s
}

func (s *Set) assign(name, value string) {
	switch name {
	case "from":
		if s.From == "" {
			s.From = Decode(value)
		}
	case "to":
		if s.To == "" {
			s.To = Decode(value)
		}
	case "cc":
		if s.Cc == "" {
			s.Cc = Decode(value)
		}
	case "subject":
		if s.Subject == "" {
			s.Subject = Decode(value)
		}
	case "date":
		if s.Date == "" {
			s.Date = Decode(value)
		}
	}
}

// headerBlock returns the bytes up to the first blank line.
func headerBlock(raw []byte) string {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return string(raw[:i])
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}
