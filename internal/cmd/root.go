// Package cmd wires every scope subcommand onto a cobra root command and
// exposes Execute for cmd/scope/main.go to call.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/config"
	"github.com/adagradschool/scope/internal/scopepath"
	"github.com/adagradschool/scope/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "scope",
	Short: "Orchestrate hierarchical doer/checker sub-agent sessions",
	Long: `scope spawns sub-agent sessions in a tree, drives each through a
doer-writes/checker-verifies iteration loop against a rubric, and lets a
sequence of such sessions be composed into a named workflow.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, diagnosticOrPlain(err))
		return exitCodeFor(err)
	}
	return 0
}

type diagnostic interface {
	Diagnostic() string
}

func diagnosticOrPlain(err error) string {
	if d, ok := err.(diagnostic); ok {
		return d.Diagnostic()
	}
	return "Error: " + err.Error()
}

// projectStore resolves and opens the project-scope store rooted at cwd,
// ensuring its directory exists.
func projectStore() (*store.Store, error) {
	root, err := scopepath.ProjectFromCwd()
	if err != nil {
		return nil, err
	}
	st := store.New(root)
	if err := st.EnsureScopeDir(); err != nil {
		return nil, err
	}
	return st, nil
}

// projectConfig loads scope.toml (project) merged over config.toml (global).
func projectConfig() (*config.ProjectConfig, error) {
	projectRoot, err := scopepath.ProjectFromCwd()
	if err != nil {
		return nil, err
	}
	globalRoot, err := scopepath.Global()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadProjectConfig(filepath.Join(projectRoot, "scope.toml"))
	if err != nil {
		return nil, err
	}
	global, err := config.LoadGlobalConfig(filepath.Join(globalRoot, "config.toml"))
	if err != nil {
		return nil, err
	}
	cfg.Merge(global)
	return cfg, nil
}
