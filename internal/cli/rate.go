package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/scheduler"
)

// NewRateCmd creates the 'rate' command: score the current card.
func NewRateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "rate <again|hard|good|easy>",
		Short:     "Rate the current card and advance the sitting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"again", "hard", "good", "easy"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rating domain.Rating
			if err := rating.UnmarshalText([]byte(args[0])); err != nil {
				return fmt.Errorf("unknown rating %q (use again, hard, good or easy)", args[0])
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := context.Background()

			state, sess, err := e.queue.SubmitRating(ctx, e.cfg.User.ID, rating, time.Now())
			if err != nil {
				if errors.Is(err, domain.ErrEmptyQueue) || errors.Is(err, domain.ErrSessionComplete) {
					fmt.Println("No card to rate. Run 'snapdeck-helper session' first.")
					return nil
				}
				return err
			}

			fmt.Printf("Rated %s: next review in %s (%s).\n",
				rating, scheduler.FormatInterval(state.IntervalDays), state.Status)

			if sess.IsComplete() {
				fmt.Println("Sitting complete. All items reviewed.")
				return nil
			}
			return printCurrent(ctx, e)
		},
	}
}

// NewSkipCmd creates the 'skip' command: defer the current card to the
// end of the sitting without scoring it.
func NewSkipCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Defer the current card to the end of the sitting",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := context.Background()

			if _, err := e.queue.Skip(ctx, e.cfg.User.ID); err != nil {
				if errors.Is(err, domain.ErrEmptyQueue) || errors.Is(err, domain.ErrSessionComplete) {
					fmt.Println("No card to skip. Run 'snapdeck-helper session' first.")
					return nil
				}
				return err
			}

			fmt.Println("Card deferred.")
			return printCurrent(ctx, e)
		},
	}
}
