package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// NewAddCmd creates the 'add' command: store a card in the local database
// so it can enter future sittings as a new item.
func NewAddCmd(cfgPath *string) *cobra.Command {
	var front, back, source string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card to the local database",
		Example: `  snapdeck-helper add --front "photosynthesis" --back "conversion of light into chemical energy"
  snapdeck-helper add -f "CAP theorem" -b "consistency, availability, partition tolerance: pick two" --source https://example.com/article`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			item, err := domain.NewItem(e.cfg.User.ID, front, back, source)
			if err != nil {
				return err
			}

			if err := e.store.AddItem(context.Background(), item); err != nil {
				return err
			}

			fmt.Printf("Added card %s.\n", item.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&front, "front", "f", "", "Front of the card (required)")
	cmd.Flags().StringVarP(&back, "back", "b", "", "Back of the card")
	cmd.Flags().StringVar(&source, "source", "", "URL the card was captured from")
	cmd.MarkFlagRequired("front")

	return cmd
}
