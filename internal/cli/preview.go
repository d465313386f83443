package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// NewPreviewCmd creates the 'preview' command: show what each rating
// would do to the current card, without persisting anything.
func NewPreviewCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show the interval each rating would produce for the current card",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := context.Background()

			item, _, err := e.queue.Current(ctx, e.cfg.User.ID)
			if err != nil {
				if errors.Is(err, domain.ErrEmptyQueue) || errors.Is(err, domain.ErrSessionComplete) {
					fmt.Println("No current card. Run 'snapdeck-helper session' first.")
					return nil
				}
				return err
			}

			outcomes, err := e.queue.Preview(ctx, e.cfg.User.ID, item.ID, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("%s\n\n", item.Front)
			for _, r := range domain.Ratings {
				entry := outcomes[r]
				fmt.Printf("  %-6s %6s  (%s)\n", r, entry.Label, entry.State.Status)
			}
			return nil
		},
	}
}

// NewQuotaCmd creates the 'quota' command: report today's new-item budget.
func NewQuotaCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show how many new cards may still be introduced today",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			q := e.quota.Remaining(context.Background(), e.cfg.User.ID, time.Now())
			if q.Unlimited {
				fmt.Println("No daily new-item limit configured.")
				return nil
			}

			fmt.Printf("Introduced today: %d of %d. Remaining: %d.\n", q.Introduced, q.Limit, q.Remaining)
			return nil
		},
	}
}
