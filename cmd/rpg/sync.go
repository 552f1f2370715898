package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rpg/internal/diffparser"
	"rpg/internal/evolver"
	"rpg/internal/rpgconfig"
	"rpg/internal/rpgerrors"
	"rpg/internal/rpgfacade"
	"rpg/internal/rpglock"
	"rpg/internal/rpglog"
	"rpg/internal/rpgstore"
	"rpg/internal/router"
	"rpg/internal/semantics"
	"rpg/internal/serializer"
	"rpg/internal/vcsprobe"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the branch-local graph against the canonical graph and evolve it",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "re-copy the canonical graph even if a local graph already exists")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		return rpgerrors.ConfigError("resolving working directory", err)
	}

	cfg, err := rpgconfig.Load(repoRoot)
	if err != nil {
		return err
	}
	logger := loggerForConfig(cfg)

	canonicalDir := filepath.Join(repoRoot, ".rpg")
	localDir := filepath.Join(canonicalDir, "local")

	lock, err := rpglock.Acquire(canonicalDir)
	if err != nil {
		return rpgerrors.New(rpgerrors.KindStore, "another sync is already running", err)
	}
	defer lock.Release()

	if _, statErr := os.Stat(filepath.Join(canonicalDir, serializer.CanonicalFile)); statErr != nil {
		return rpgerrors.New(rpgerrors.KindStore, "no canonical graph at .rpg/graph.json; run 'rpg init' and build one first", statErr)
	}

	localExists := fileExists(filepath.Join(localDir, serializer.CanonicalFile))
	if syncForce || !localExists {
		if err := copyCanonicalToLocal(canonicalDir, localDir); err != nil {
			return err
		}
	}

	probe := vcsprobe.New()
	branch, err := probe.CurrentBranch(ctx, repoRoot)
	if err != nil {
		return err
	}
	defaultBranch, err := probe.DefaultBranch(ctx, repoRoot)
	if err != nil {
		return err
	}
	headSha, err := probe.HeadSha(ctx, repoRoot)
	if err != nil {
		return err
	}

	if branch != "" && branch != defaultBranch {
		if err := evolveLocal(ctx, cfg, logger, repoRoot, localDir, probe, defaultBranch, headSha); err != nil {
			logger.Warn("evolution failed, falling back to canonical copy", map[string]interface{}{"error": err.Error()})
			if copyErr := copyCanonicalToLocal(canonicalDir, localDir); copyErr != nil {
				return copyErr
			}
		}
	}

	if err := rpgconfig.SaveLocalState(repoRoot, rpgconfig.NewLocalState(headSha, branch)); err != nil {
		return err
	}

	fmt.Println("rpg sync complete.")
	fmt.Printf("branch=%s head=%s\n", branch, headSha)
	return nil
}

func evolveLocal(ctx context.Context, cfg *rpgconfig.Config, logger *rpglog.Logger, repoRoot, localDir string, probe *vcsprobe.GitProbe, defaultBranch, headSha string) error {
	mergeBase, err := probe.MergeBase(ctx, repoRoot, defaultBranch, headSha)
	if err != nil {
		return err
	}
	if mergeBase == headSha {
		return nil
	}
	commitRange := mergeBase + ".." + headSha

	store := rpgstore.NewMemoryStore()
	if err := serializer.Read(store, localDir); err != nil {
		return err
	}

	facade := rpgfacade.New(store)
	parser := diffparser.New(repoRoot, probe, nil)
	cache := semantics.NewCache(filepath.Join(localDir, "semantic-cache.json"))
	extractor := semantics.NewExtractor(nil, cache, nil)
	rtr := router.New(nil, nil)
	ev := evolver.New(facade, parser, extractor, rtr, nil, nil)

	opts := evolutionOptionsFromConfig(cfg)
	opts.RepoPath = repoRoot
	opts.CommitRange = commitRange

	if _, err := ev.Run(ctx, opts); err != nil {
		return err
	}
	if err := cache.Flush(); err != nil && logger != nil {
		logger.Warn("flushing semantic cache failed", map[string]interface{}{"error": err.Error()})
	}

	return serializer.Write(store, rpgstore.ExportConfig{Name: cfg.RepoRoot}, localDir, serializer.Options{Compress: cfg.Export.Compress})
}

func copyCanonicalToLocal(canonicalDir, localDir string) error {
	data, err := os.ReadFile(filepath.Join(canonicalDir, serializer.CanonicalFile))
	if err != nil {
		return rpgerrors.StoreError("reading canonical graph", err)
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return rpgerrors.StoreError("creating local graph directory", err)
	}
	if err := os.WriteFile(filepath.Join(localDir, serializer.CanonicalFile), data, 0o644); err != nil {
		return rpgerrors.StoreError("writing local graph", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func evolutionOptionsFromConfig(cfg *rpgconfig.Config) evolver.EvolutionOptions {
	opts := evolver.DefaultEvolutionOptions()
	opts.DriftThreshold = cfg.Evolution.DriftThreshold
	opts.UseLLM = cfg.Evolution.UseLLM
	opts.IncludeSource = cfg.Evolution.IncludeSource
	return opts
}
