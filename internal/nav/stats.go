package nav

import (
	"fmt"
	"io"

	"github.com/randelsr/mbox-navigator/internal/index"
)

// WriteStats prints an archive summary block. The same block serves the
// interactive info command and the stats subcommand.
func WriteStats(w io.Writer, path string, sizeBytes int64, st index.Stats) {
	fmt.Fprintf(w, "Archive:    %s\n", path)
	fmt.Fprintf(w, "Messages:   %d\n", st.Messages)
	fmt.Fprintf(w, "Size:       %s\n", formatBytes(sizeBytes))
	if st.Dated > 0 {
		fmt.Fprintf(w, "Date range: %s to %s\n",
			st.Earliest.Format("2006-01-02"), st.Latest.Format("2006-01-02"))
	}
	if st.Dated < st.Messages {
		fmt.Fprintf(w, "Undated:    %d\n", st.Messages-st.Dated)
	}
	if len(st.Domains) > 0 {
		fmt.Fprintln(w, "Top sender domains:")
		for _, d := range st.Domains {
			fmt.Fprintf(w, "  @%s: %d messages\n", d.Domain, d.Count)
		}
	}
}
