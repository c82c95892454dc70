// Package split extracts the messages of a single year from an mbox
// archive into a new archive, classifying each message by its Date
// header text.
package split

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/randelsr/mbox-navigator/internal/dateyear"
	"github.com/randelsr/mbox-navigator/internal/header"
	"github.com/randelsr/mbox-navigator/internal/mbox"
	"github.com/randelsr/mbox-navigator/internal/textutil"
)

const sampleSubjectRunes = 50

var yearArg = regexp.MustCompile(`^\d{4}$`)

// Options configures one split run.
type Options struct {
	// Source is the archive to read.
	Source string
	// Dest is the archive to write. Recreated from scratch on every run.
	Dest string
	// Year is the four-digit year to extract.
	Year string
	// Sample, when positive, switches to sample mode: classify the first
	// Sample messages and print the outcome instead of writing anything.
	Sample int
	// MaxMessageBytes caps single-message size while scanning. Zero means
	// the default cap, negative disables it.
	MaxMessageBytes int64
	// Logger receives per-message debug output. Defaults to slog.Default.
	Logger *slog.Logger
	// Out receives sample mode output. Defaults to os.Stdout.
	Out io.Writer
}

// Summary reports what a split run did.
type Summary struct {
	// Processed counts every message scanned.
	Processed int
	// Matched counts messages written to the destination, or in sample
	// mode, messages the classifier resolved to some year.
	Matched int
	// Skipped counts oversized messages the scan stepped over.
	Skipped int
}

// Run scans the source archive and either writes the matching year's
// messages to the destination or, in sample mode, prints classification
// results for the first few messages.
func Run(ctx context.Context, opts Options) (Summary, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	maxBytes := opts.MaxMessageBytes
	if maxBytes == 0 {
		maxBytes = mbox.DefaultMaxMessageBytes
	}
	mb, err := mbox.OpenWithMaxMessageBytes(opts.Source, maxBytes)
	if err != nil {
		return Summary{}, err
	}
	defer mb.Close()

	if opts.Sample > 0 {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return sample(ctx, mb, opts.Sample, out)
	}

	if !yearArg.MatchString(opts.Year) {
		return Summary{}, fmt.Errorf("invalid year %q: want four digits", opts.Year)
	}
	if samePath(opts.Source, opts.Dest) {
		return Summary{}, fmt.Errorf("destination %q is the source archive", opts.Dest)
	}

	w, err := mbox.Create(opts.Dest)
	if err != nil {
		return Summary{}, err
	}
	defer w.Close()

	var sum Summary
	err = mb.Scan(ctx, func(rec *mbox.Record) error {
		sum.Processed++
		date := header.Fields(rec.Raw).Date
		if date == "" {
			log.Debug("skipping message without date header", "index", int(rec.Key))
			return nil
		}
		res, ok := dateyear.Classify(date)
		if !ok {
			log.Debug("skipping unclassifiable date", "index", int(rec.Key), "date", date)
			return nil
		}
		if res.Year != opts.Year {
			return nil
		}
		if err := w.Append(rec.Sender, rec.Date, rec.Raw); err != nil {
			return fmt.Errorf("write message %d: %w", int(rec.Key), err)
		}
		sum.Matched++
		log.Debug("extracted message", "index", int(rec.Key), "method", res.Method)
		return nil
	})
	if err != nil {
		return sum, err
	}
	sum.Skipped = mb.Skipped()

	if err := w.Close(); err != nil {
		return sum, fmt.Errorf("close destination: %w", err)
	}
	return sum, nil
}

// sample classifies the first n messages and prints one block per
// message so the classifier can be checked against a real archive
// before committing to a full split.
func sample(ctx context.Context, mb *mbox.Mailbox, n int, out io.Writer) (Summary, error) {
	var sum Summary
	err := mb.Scan(ctx, func(rec *mbox.Record) error {
		sum.Processed++
		fs := header.Fields(rec.Raw)
		fmt.Fprintf(out, "Message %d:\n", int(rec.Key))
		fmt.Fprintf(out, "  Subject: %s\n", textutil.TruncateRunes(fs.Subject, sampleSubjectRunes))
		fmt.Fprintf(out, "  Date:    %s\n", fs.Date)
		if res, ok := dateyear.Classify(fs.Date); ok {
			fmt.Fprintf(out, "  Year:    %s (%s)\n", res.Year, res.Method)
			sum.Matched++
		} else {
			fmt.Fprintln(out, "  Year:    unknown")
		}
		if sum.Processed >= n {
			return mbox.ErrStopScan
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	sum.Skipped = mb.Skipped()
	return sum, nil
}

func samePath(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return aa == bb
}
