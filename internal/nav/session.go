// Package nav implements the interactive mbox archive browser: a small
// line-oriented command loop over an open archive and its header index.
package nav

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/randelsr/mbox-navigator/internal/header"
	"github.com/randelsr/mbox-navigator/internal/index"
	"github.com/randelsr/mbox-navigator/internal/mbox"
	"github.com/randelsr/mbox-navigator/internal/textutil"
)

const prompt = "(mbox) "

// errQuit signals a clean exit from the command loop.
var errQuit = errors.New("quit")

var validColumns = map[string]bool{
	"date":    true,
	"from":    true,
	"to":      true,
	"subject": true,
}

// Options configures a browsing session.
type Options struct {
	// PageSize is the default number of rows per page.
	PageSize int
	// SearchLimit bounds how many matches a search displays.
	SearchLimit int
	// Columns are the table columns shown after the index column.
	Columns []string
	// Width is the display width in terminal cells.
	Width int
	// Prompt enables the interactive prompt and intro line. Leave it off
	// when input is piped.
	Prompt bool
	// Logger receives debug output. Defaults to slog.Default.
	Logger *slog.Logger
}

// Session is an interactive browsing session over one archive. Messages
// are listed by their file-order index; show and save resolve that same
// index regardless of the current sort order.
type Session struct {
	mb    *mbox.Mailbox
	table *index.Table
	out   io.Writer
	log   *slog.Logger

	cursor    int
	lastStart int

	cols        []string
	pageSize    int
	searchLimit int
	width       int
	interactive bool
}

// NewSession wraps an open archive and its built index in a session
// writing to out.
func NewSession(mb *mbox.Mailbox, table *index.Table, out io.Writer, opts Options) *Session {
	s := &Session{
		mb:          mb,
		table:       table,
		out:         out,
		log:         opts.Logger,
		pageSize:    opts.PageSize,
		searchLimit: opts.SearchLimit,
		width:       opts.Width,
		interactive: opts.Prompt,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.pageSize <= 0 {
		s.pageSize = 20
	}
	if s.searchLimit <= 0 {
		s.searchLimit = 100
	}
	if s.width <= 0 {
		s.width = 120
	}
	for _, c := range opts.Columns {
		if c = strings.ToLower(c); validColumns[c] {
			s.cols = append(s.cols, c)
		}
	}
	if len(s.cols) == 0 {
		s.cols = []string{"date", "from", "subject"}
	}
	return s
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(*Session, string) error
}

// commands is assigned in init rather than in its declaration: cmdHelp
// ranges over it, which would otherwise be an initialization cycle.
var commands []command

var commandsByName = map[string]*command{}

func init() {
	commands = []command{
		{"ls", "ls [n]", "list the next page of messages", (*Session).cmdList},
		{"next", "next [n]", "alias for ls", (*Session).cmdList},
		{"prev", "prev [n]", "go back one page", (*Session).cmdPrev},
		{"show", "show <idx>", "print a full message", (*Session).cmdShow},
		{"search", "search <text>", "find messages by sender or subject", (*Session).cmdSearch},
		{"sort", "sort <field> [asc|desc]", "reorder by date, from, or subject", (*Session).cmdSort},
		{"cols", "cols [c1 c2 ...]", "show or set the table columns", (*Session).cmdCols},
		{"save", "save <idx> <path>", "write a raw message to a file", (*Session).cmdSave},
		{"info", "info", "print archive statistics", (*Session).cmdInfo},
		{"help", "help", "list commands", (*Session).cmdHelp},
		{"quit", "quit", "exit the browser", (*Session).cmdQuit},
	}
	for i := range commands {
		commandsByName[commands[i].name] = &commands[i]
	}
}

// Run reads commands from in until quit, EOF, or a fatal error.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	if s.interactive {
		fmt.Fprintf(s.out, "Type 'help' for commands, 'quit' to leave.\n")
	}

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.interactive {
			fmt.Fprint(s.out, prompt)
		}
		if !scanner.Scan() {
			if s.interactive {
				fmt.Fprintln(s.out)
			}
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")
		cmd, ok := commandsByName[verb]
		if !ok {
			fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for commands.\n", verb)
			continue
		}
		s.log.Debug("command", "verb", verb, "arg", arg)
		if err := cmd.run(s, strings.TrimSpace(arg)); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

// pageArg parses an optional page size argument, returning def when arg
// is empty and -1 when it is not a positive integer.
func pageArg(arg string, def int) int {
	if arg == "" {
		return def
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return -1
	}
	return n
}

func (s *Session) cmdList(arg string) error {
	n := pageArg(arg, s.pageSize)
	if n < 0 {
		fmt.Fprintln(s.out, "Usage: ls [n]")
		return nil
	}
	start := s.cursor
	rows, next := s.table.Page(start, n)
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No messages.")
		return nil
	}
	renderTable(s.out, rows, s.cols, s.width)
	s.lastStart = start
	s.cursor = next
	return nil
}

func (s *Session) cmdPrev(arg string) error {
	n := pageArg(arg, s.pageSize)
	if n < 0 {
		fmt.Fprintln(s.out, "Usage: prev [n]")
		return nil
	}
	start := index.PrevStart(s.lastStart, n)
	rows, next := s.table.Page(start, n)
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No messages.")
		return nil
	}
	renderTable(s.out, rows, s.cols, s.width)
	s.lastStart = start
	s.cursor = next
	return nil
}

func (s *Session) cmdShow(arg string) error {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintln(s.out, "Usage: show <idx>")
		return nil
	}
	rec, err := s.lookup(idx)
	if errors.Is(err, index.ErrOutOfRange) {
		fmt.Fprintf(s.out, "No message at index %d.\n", idx)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read message %d: %w", idx, err)
	}

	fs := header.Fields(rec.Raw)
	rule := strings.Repeat("=", s.width)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintf(s.out, "From:    %s\n", fs.From)
	if fs.To != "" {
		fmt.Fprintf(s.out, "To:      %s\n", fs.To)
	}
	if fs.Cc != "" {
		fmt.Fprintf(s.out, "Cc:      %s\n", fs.Cc)
	}
	fmt.Fprintf(s.out, "Date:    %s\n", fs.Date)
	fmt.Fprintf(s.out, "Subject: %s\n", fs.Subject)
	fmt.Fprintln(s.out, strings.Repeat("-", s.width))
	for _, line := range wrapText(messageBody(rec.Raw), s.width) {
		fmt.Fprintln(s.out, line)
	}
	fmt.Fprintln(s.out, rule)
	return nil
}

func (s *Session) cmdSearch(arg string) error {
	if arg == "" {
		fmt.Fprintln(s.out, "Usage: search <text>")
		return nil
	}
	matches := s.table.Filter(arg)
	if matches.Len() == 0 {
		fmt.Fprintln(s.out, "No matches.")
		return nil
	}
	rows, _ := matches.Page(0, s.searchLimit)
	renderTable(s.out, rows, s.cols, s.width)
	if matches.Len() > s.searchLimit {
		fmt.Fprintf(s.out, "Found %d matches (showing first %d).\n", matches.Len(), s.searchLimit)
	} else {
		fmt.Fprintf(s.out, "Found %d matches.\n", matches.Len())
	}
	return nil
}

func (s *Session) cmdSort(arg string) error {
	parts := strings.Fields(arg)
	if len(parts) == 0 || len(parts) > 2 {
		fmt.Fprintln(s.out, "Usage: sort <date|from|subject> [asc|desc]")
		return nil
	}
	field, ok := index.ParseField(parts[0])
	if !ok {
		fmt.Fprintf(s.out, "Unknown sort field %q. Use date, from, or subject.\n", parts[0])
		return nil
	}
	asc := true
	if len(parts) == 2 {
		switch parts[1] {
		case "asc":
		case "desc":
			asc = false
		default:
			fmt.Fprintln(s.out, "Usage: sort <date|from|subject> [asc|desc]")
			return nil
		}
	}
	s.table.Sort(field, asc)
	s.cursor = 0
	s.lastStart = 0
	dir := "ascending"
	if !asc {
		dir = "descending"
	}
	fmt.Fprintf(s.out, "Sorted by %s, %s.\n", field, dir)
	return s.cmdList("")
}

func (s *Session) cmdCols(arg string) error {
	if arg == "" {
		fmt.Fprintf(s.out, "Columns: %s (available: date, from, to, subject)\n", strings.Join(s.cols, ", "))
		return nil
	}
	var cols []string
	for _, c := range strings.Fields(arg) {
		c = strings.ToLower(c)
		if validColumns[c] {
			cols = append(cols, c)
		} else {
			fmt.Fprintf(s.out, "Ignoring unknown column %q.\n", c)
		}
	}
	if len(cols) == 0 {
		fmt.Fprintln(s.out, "No valid columns given. Choose from: date, from, to, subject.")
		return nil
	}
	s.cols = cols
	fmt.Fprintf(s.out, "Columns set to: %s\n", strings.Join(s.cols, ", "))
	return nil
}

func (s *Session) cmdSave(arg string) error {
	parts := strings.Fields(arg)
	if len(parts) != 2 {
		fmt.Fprintln(s.out, "Usage: save <idx> <path>")
		return nil
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		fmt.Fprintln(s.out, "Usage: save <idx> <path>")
		return nil
	}
	rec, err := s.lookup(idx)
	if errors.Is(err, index.ErrOutOfRange) {
		fmt.Fprintf(s.out, "No message at index %d.\n", idx)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read message %d: %w", idx, err)
	}
	if err := os.WriteFile(parts[1], rec.Raw, 0o644); err != nil {
		fmt.Fprintf(s.out, "Save failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(s.out, "Saved message %d to %s\n", idx, parts[1])
	return nil
}

func (s *Session) cmdInfo(string) error {
	WriteStats(s.out, s.mb.Path(), s.mb.Size(), s.table.Stats())
	return nil
}

func (s *Session) cmdHelp(string) error {
	fmt.Fprintln(s.out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(s.out, "  %-24s %s\n", c.usage, c.summary)
	}
	return nil
}

func (s *Session) cmdQuit(string) error {
	return errQuit
}

// lookup resolves a file-order label through the table to its archive
// record.
func (s *Session) lookup(idx int) (*mbox.Record, error) {
	row, err := s.table.Lookup(idx)
	if err != nil {
		return nil, err
	}
	return s.mb.Get(row.Key)
}

// messageBody returns the decoded text after the header block. The raw
// body is shown as stored; only the encoding is repaired.
func messageBody(raw []byte) string {
	body := raw
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		body = raw[i+4:]
	} else if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		body = raw[i+2:]
	}
	return textutil.EnsureUTF8(string(body))
}
