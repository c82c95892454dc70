package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randelsr/mbox-navigator/internal/index"
	"github.com/randelsr/mbox-navigator/internal/mbox"
	"github.com/randelsr/mbox-navigator/internal/nav"
)

var statsCmd = &cobra.Command{
	Use:   "stats <archive>",
	Short: "Show archive statistics",
	Long: `Show statistics about an mbox archive: message count, size, date
range, and the most frequent sender domains.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mb, err := mbox.OpenWithMaxMessageBytes(args[0], cfg.MaxMessageBytes())
		if err != nil {
			return err
		}
		defer mb.Close()

		table, err := index.Build(cmd.Context(), mb, logger)
		if err != nil {
			return fmt.Errorf("index archive: %w", err)
		}

		nav.WriteStats(cmd.OutOrStdout(), mb.Path(), mb.Size(), table.Stats())
		if skipped := mb.Skipped(); skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Oversized:  %d messages skipped\n", skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
