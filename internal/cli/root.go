// Package cli implements the desktop helper commands. The helper reviews
// captured cards against a local sqlite database, fully offline.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the helper's root command.
func NewRootCmd(version string) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:     "snapdeck-helper",
		Short:   "Review snapdeck flashcards from the terminal",
		Long:    `snapdeck-helper drives a spaced-repetition review sitting against the local card database. Sittings are resumable: interrupt at any point and the next 'session' picks up where you left off, as long as it is still the same day.`,
		Version: version,
	}

	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "snapdeck.toml", "Path to the helper config file")

	cmd.AddCommand(NewAddCmd(&cfgPath))
	cmd.AddCommand(NewSessionCmd(&cfgPath))
	cmd.AddCommand(NewRateCmd(&cfgPath))
	cmd.AddCommand(NewSkipCmd(&cfgPath))
	cmd.AddCommand(NewPreviewCmd(&cfgPath))
	cmd.AddCommand(NewQuotaCmd(&cfgPath))
	cmd.AddCommand(NewStatsCmd(&cfgPath))

	return cmd
}
