package main

import (
	"github.com/spf13/cobra"

	"rpg/internal/rpgerrors"
	"rpg/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "rpg",
	Short:   "rpg maintains a Repository Planning Graph for a codebase",
	Long:    "rpg builds a hierarchical graph of a repository's directories and code entities, and evolves it incrementally as commits land.",
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("rpg version {{.Version}}\n")
}

// exitCodeFor maps an error to the CLI's exit code convention: 0 success
// (unreachable here, cobra only calls this on error), 1 for a missing
// canonical graph or general failure, 2 for a VCS failure.
func exitCodeFor(err error) int {
	if kind, ok := rpgerrors.KindOf(err); ok && kind == rpgerrors.KindVcs {
		return 2
	}
	return 1
}
