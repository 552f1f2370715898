package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rpg/internal/rpgconfig"
	"rpg/internal/rpgerrors"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .rpg/config.json and install VCS hooks",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "reinitialize even if .rpg/config.json already exists")
	rootCmd.AddCommand(initCmd)
}

var hookNames = []string{"post-merge", "post-checkout"}

const hookScript = `#!/bin/sh
# installed by rpg init
rpg sync || true
`

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return rpgerrors.ConfigError("resolving working directory", err)
	}

	configPath := filepath.Join(repoRoot, ".rpg", "config.json")
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		fmt.Println("rpg already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("Run 'rpg init --force' to reinitialize.")
		return nil
	}

	cfg := rpgconfig.DefaultConfig()
	cfg.RepoRoot = "."
	if err := cfg.SaveJSON(repoRoot); err != nil {
		return err
	}

	installed, err := installHooks(repoRoot)
	if err != nil {
		return err
	}

	if err := appendGitignore(repoRoot); err != nil {
		return err
	}

	fmt.Println("rpg initialized.")
	fmt.Printf("Configuration written to: %s\n", configPath)
	for _, name := range installed {
		fmt.Printf("Installed hook: %s\n", name)
	}
	return nil
}

// installHooks writes each hook in hookNames under .git/hooks, skipping any
// that already exist so a prior custom hook is never clobbered.
func installHooks(repoRoot string) ([]string, error) {
	hooksDir := filepath.Join(repoRoot, ".git", "hooks")
	if _, err := os.Stat(hooksDir); err != nil {
		return nil, nil
	}

	var installed []string
	for _, name := range hookNames {
		path := filepath.Join(hooksDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(hookScript), 0o755); err != nil {
			return installed, rpgerrors.ConfigError("writing "+name+" hook", err)
		}
		installed = append(installed, name)
	}
	return installed, nil
}

// appendGitignore ensures ".rpg/local/" is ignored, without duplicating the
// entry on repeated init runs.
func appendGitignore(repoRoot string) error {
	path := filepath.Join(repoRoot, ".gitignore")
	const entry = ".rpg/local/"

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return rpgerrors.ConfigError("reading .gitignore", err)
	}
	if strings.Contains(string(existing), entry) {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return rpgerrors.ConfigError("opening .gitignore", err)
	}
	defer f.Close()

	prefix := ""
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		prefix = "\n"
	}
	if _, err := f.WriteString(prefix + entry + "\n"); err != nil {
		return rpgerrors.ConfigError("writing .gitignore", err)
	}
	return nil
}
