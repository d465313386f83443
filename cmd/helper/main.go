// Command snapdeck-helper reviews captured flashcards against a local
// sqlite database, fully offline.
package main

import (
	"fmt"
	"os"

	"github.com/snapdeck/snapdeck-review-engine/internal/cli"
)

// version is set via ldflags during release builds.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
