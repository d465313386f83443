package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// NewSessionCmd creates the 'session' command: start or resume a sitting.
func NewSessionCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Start or resume today's review sitting",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := context.Background()
			now := time.Now()

			sess, err := e.queue.Start(ctx, e.cfg.User.ID, now)
			if err != nil {
				return err
			}

			if len(sess.ItemIDs) == 0 {
				fmt.Println("Nothing due for review. Come back later!")
				return nil
			}

			q := e.quota.Remaining(ctx, e.cfg.User.ID, now)
			if q.Unlimited {
				fmt.Printf("Sitting: %d items (%d remaining), no daily new-item limit.\n", len(sess.ItemIDs), sess.Remaining())
			} else {
				fmt.Printf("Sitting: %d items (%d remaining), %d new-item slots left today.\n", len(sess.ItemIDs), sess.Remaining(), q.Remaining)
			}

			return printCurrent(ctx, e)
		},
	}
}

// printCurrent shows the card under the cursor.
func printCurrent(ctx context.Context, e *env) error {
	item, sess, err := e.queue.Current(ctx, e.cfg.User.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionComplete) {
			fmt.Println("Sitting complete. All items reviewed.")
			return nil
		}
		if errors.Is(err, domain.ErrEmptyQueue) {
			fmt.Println("No active sitting. Run 'snapdeck-helper session' first.")
			return nil
		}
		return err
	}

	fmt.Printf("\n[%d/%d] %s\n", sess.Cursor+1, len(sess.ItemIDs), item.Front)
	if item.Back != "" {
		fmt.Printf("       %s\n", item.Back)
	}
	fmt.Println("\nRate with: snapdeck-helper rate <again|hard|good|easy>")
	return nil
}
