// Command rpg builds and evolves a Repository Planning Graph for a
// checked-out repository.
package main

import (
	"os"

	"rpg/internal/rpglog"
)

func main() {
	logger := rpglog.NewLogger(rpglog.Config{
		Format: rpglog.HumanFormat,
		Level:  rpglog.InfoLevel,
	})

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", map[string]interface{}{"error": err.Error()})
		os.Exit(exitCodeFor(err))
	}
}
