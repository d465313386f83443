package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/services"
)

// NewStatsCmd creates the 'stats' command: per-day review activity for the
// last N days.
func NewStatsCmd(cfgPath *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show review activity for recent days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || days > 366 {
				return fmt.Errorf("days must be between 1 and 366, got %d", days)
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			now := time.Now()
			stats, err := e.stats.GetRangeStats(context.Background(), services.StatsInput{
				UserID:    e.cfg.User.ID,
				StartDate: now.AddDate(0, 0, -(days - 1)),
				EndDate:   now,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%-12s %8s %7s %6s %7s\n", "date", "reviews", "lapses", "new", "recall")
			for _, d := range stats.Days {
				recall := "-"
				if d.Reviews > 0 {
					recall = fmt.Sprintf("%.0f%%", d.RecallRate)
				}
				fmt.Printf("%-12s %8d %7d %6d %7s\n", d.Date, d.Reviews, d.Lapses, d.Introduced, recall)
			}

			fmt.Printf("\nTotal: %d reviews, %d lapses", stats.TotalReviews, stats.TotalLapses)
			if stats.TotalReviews > 0 {
				fmt.Printf(", %.0f%% recall", stats.RecallRate)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of days to include, ending today")

	return cmd
}
