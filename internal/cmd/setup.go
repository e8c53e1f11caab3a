package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/scopepath"
	"github.com/adagradschool/scope/internal/store"
)

var setupGlobal bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the .scope directory and a default scope.toml",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupGlobal, "global", false, "set up the global scope root instead of the project one")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	root, configName, err := setupTarget()
	if err != nil {
		return err
	}

	st := store.New(root)
	if err := st.EnsureScopeDir(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(root, "patterns"), 0o755); err != nil {
		return err
	}

	configPath := filepath.Join(root, configName)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stdout, "%s already exists, leaving it in place\n", configPath)
		return nil
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(defaultSkeleton(setupGlobal)); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "created %s\n", root)
	return nil
}

func setupTarget() (root string, configName string, err error) {
	if setupGlobal {
		root, err = scopepath.Global()
		return root, "config.toml", err
	}
	root, err = scopepath.ProjectFromCwd()
	return root, "scope.toml", err
}

func defaultSkeleton(global bool) map[string]interface{} {
	if global {
		return map[string]interface{}{
			"lru_cap":                 500,
			"checker_timeout_seconds": 300,
			"default_model":           "",
			"cost_tier":               "standard",
		}
	}
	return map[string]interface{}{
		"lru_cap":                     500,
		"checker_timeout_seconds":     300,
		"default_model":               "",
		"cost_tier":                   "standard",
		"eviction_interval_minutes":   5,
	}
}
