package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rpg/internal/rpgconfig"
	"rpg/internal/rpgerrors"
	"rpg/internal/serializer"
)

var showLocal bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print summary statistics for the graph",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showLocal, "local", false, "read the branch-local graph instead of the canonical one")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return rpgerrors.ConfigError("resolving working directory", err)
	}

	cfg, err := rpgconfig.Load(repoRoot)
	if err != nil {
		return err
	}
	logger := loggerForConfig(cfg)

	dir := filepath.Join(repoRoot, ".rpg")
	if showLocal {
		dir = filepath.Join(dir, "local")
	}

	store, err := storeForConfig(repoRoot, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := serializer.Read(store, dir); err != nil {
		return rpgerrors.New(rpgerrors.KindStore, "no graph found at "+filepath.Join(dir, serializer.CanonicalFile), err)
	}

	stats, err := store.GetStats()
	if err != nil {
		return err
	}

	fmt.Printf("nodes:       %d\n", stats.NodeCount)
	fmt.Printf("  high-level: %d\n", stats.HighLevelNodeCount)
	fmt.Printf("  low-level:  %d\n", stats.LowLevelNodeCount)
	fmt.Printf("edges:       %d\n", stats.EdgeCount)
	return nil
}
