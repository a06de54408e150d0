package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathsheet/internal/store"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently generated worksheets",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		preset, _ := cmd.Flags().GetString("preset")
		failed, _ := cmd.Flags().GetBool("failed")

		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().RecentBatches(cmd.Context(), store.QueryOpts{
			Limit:      limit,
			Preset:     preset,
			FailedOnly: failed,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No worksheets generated yet.")
			return nil
		}

		// Header.
		fmt.Printf("%-5s  %-19s  %-6s  %-14s  %-20s  %5s  %8s  %s\n",
			"Seq", "Timestamp", "Source", "Preset", "Seed", "Count", "Attempts", "OK")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.ErrorMessage
			}
			fmt.Printf("%-5d  %-19s  %-6s  %s  %-20d  %5d  %8d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Source,
				presetColumn(e.Preset, 14),
				e.Seed,
				e.Problems,
				e.Attempts,
				ok,
			)
		}
		fmt.Println("\nRegenerate any row with: mathsheet generate --seed <seed> plus its settings.")
		return nil
	},
}

// presetColumn pads or cuts name to width terminal cells without splitting
// a multi-byte character.
func presetColumn(name string, width int) string {
	if name == "" {
		name = "-"
	}
	return runewidth.FillRight(runewidth.Truncate(name, width, ""), width)
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of batches to show")
	historyCmd.Flags().String("preset", "", "Only show batches generated from this preset")
	historyCmd.Flags().Bool("failed", false, "Only show failed batches")
}
