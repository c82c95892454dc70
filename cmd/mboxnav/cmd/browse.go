package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/randelsr/mbox-navigator/internal/index"
	"github.com/randelsr/mbox-navigator/internal/mbox"
	"github.com/randelsr/mbox-navigator/internal/nav"
)

// validateProbeBytes bounds how far into the file the pre-index format
// check looks for a "From " separator.
const validateProbeBytes = 1 << 20

var browsePageSize int

var browseCmd = &cobra.Command{
	Use:   "browse <archive>",
	Short: "Browse an mbox archive interactively",
	Long: `Browse an mbox archive interactively.

The archive is indexed once on startup (headers only; message bodies stay
on disk), then a command prompt offers paging, sorting, searching, and
extraction of single messages.

Examples:
  mboxnav browse ~/mail/archive.mbox
  mboxnav browse --page-size 40 big.mbox`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = mbox.Validate(f, validateProbeBytes)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		mb, err := mbox.OpenWithMaxMessageBytes(path, cfg.MaxMessageBytes())
		if err != nil {
			return err
		}
		defer mb.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Indexing %s...\n", path)
		table, err := index.Build(cmd.Context(), mb, logger)
		if err != nil {
			return fmt.Errorf("index archive: %w", err)
		}
		if skipped := mb.Skipped(); skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d messages from %s (%d oversized skipped)\n", table.Len(), path, skipped)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d messages from %s\n", table.Len(), path)
		}

		pageSize := cfg.Browse.PageSize
		if browsePageSize > 0 {
			pageSize = browsePageSize
		}

		interactive := isatty.IsTerminal(os.Stdin.Fd())
		width := 0
		if interactive {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				width = w
			}
		}

		sess := nav.NewSession(mb, table, cmd.OutOrStdout(), nav.Options{
			PageSize:    pageSize,
			SearchLimit: cfg.Browse.SearchLimit,
			Columns:     cfg.Browse.Columns,
			Width:       width,
			Prompt:      interactive,
			Logger:      logger,
		})
		return sess.Run(cmd.Context(), cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().IntVar(&browsePageSize, "page-size", 0, "rows per page (overrides config)")
}
