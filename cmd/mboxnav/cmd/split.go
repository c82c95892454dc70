package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/randelsr/mbox-navigator/internal/split"
)

var (
	splitSample int
	splitDebug  bool
)

var splitCmd = &cobra.Command{
	Use:   "split <archive> <year> <dest>",
	Short: "Extract one year's messages into a new archive",
	Long: `Extract every message of a given year from an archive into a new
mbox file. Messages are classified by the text of their Date header, so
archives with malformed or unusual date formats still split usefully;
messages whose year cannot be determined are skipped.

The destination is rewritten from scratch, so rerunning a split is safe.

Examples:
  mboxnav split big.mbox 2019 mail-2019.mbox

  # Check the classifier against the first 20 messages before splitting
  mboxnav split big.mbox 2019 mail-2019.mbox --sample 20`,
	Args:         cobra.ExactArgs(3),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger
		if splitDebug && !verbose {
			log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
		}

		start := time.Now()
		sum, err := split.Run(cmd.Context(), split.Options{
			Source:          args[0],
			Year:            args[1],
			Dest:            args[2],
			Sample:          splitSample,
			MaxMessageBytes: cfg.MaxMessageBytes(),
			Logger:          log,
			Out:             cmd.OutOrStdout(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if splitSample > 0 {
			fmt.Fprintf(out, "Sampled %d messages, %d classified.\n", sum.Processed, sum.Matched)
			return nil
		}
		fmt.Fprintf(out, "Processed %d messages\n", sum.Processed)
		fmt.Fprintf(out, "Extracted %d messages from year %s to %s\n", sum.Matched, args[1], args[2])
		if sum.Skipped > 0 {
			fmt.Fprintf(out, "Skipped %d oversized messages\n", sum.Skipped)
		}
		log.Info("split completed",
			"source", args[0],
			"year", args[1],
			"matched", sum.Matched,
			"elapsed", time.Since(start),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().IntVar(&splitSample, "sample", 0, "classify the first N messages and print the results instead of splitting")
	splitCmd.Flags().BoolVar(&splitDebug, "debug", false, "log every skipped message")
}
