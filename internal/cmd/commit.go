package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/diag"
	"github.com/adagradschool/scope/internal/scopepath"
	"github.com/adagradschool/scope/internal/store"
	"github.com/adagradschool/scope/internal/workflow"
)

var commitCmd = &cobra.Command{
	Use:   "commit <pattern>",
	Short: "Commit the current session to a named multi-phase workflow pattern",
	Long: `Loads a named pattern from patterns/<name>.toml (project scope root
first, then global) and records it on the current session ($SESSION_ID) as
its committed pattern. Use "scope advance" to move through the pattern's
phases once committed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)
}

func findPatternFile(name string) (string, error) {
	projectRoot, err := scopepath.ProjectFromCwd()
	if err != nil {
		return "", err
	}
	candidate := filepath.Join(projectRoot, "patterns", name+".toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	globalRoot, err := scopepath.Global()
	if err != nil {
		return "", err
	}
	candidate = filepath.Join(globalRoot, "patterns", name+".toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", diag.NotFound("pattern " + name)
}

func runCommit(cmd *cobra.Command, args []string) error {
	id, err := currentSessionID()
	if err != nil {
		return err
	}
	path, err := findPatternFile(args[0])
	if err != nil {
		return err
	}
	def, err := workflow.Load(path)
	if err != nil {
		return err
	}
	var phases []string
	for _, p := range def.Phases {
		phases = append(phases, p.Name)
	}

	st, err := projectStore()
	if err != nil {
		return err
	}
	return st.SavePattern(id, &store.PatternState{
		Name:   args[0],
		Phases: phases,
	})
}
