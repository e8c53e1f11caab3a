package cmd

import (
	"time"

	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adagradschool/scope/internal/janitor"
	"github.com/adagradschool/scope/internal/tui"
	"github.com/adagradschool/scope/internal/watch"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Watch the session tree live",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	st, err := projectStore()
	if err != nil {
		return err
	}
	cfg, err := projectConfig()
	if err != nil {
		return err
	}

	w := watch.New(st)
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	j := janitor.New(st, cfg.LRUCap)
	evictionMinutes := cfg.EvictionMinutes
	if evictionMinutes <= 0 {
		evictionMinutes = 5
	}
	if err := j.Start(time.Duration(evictionMinutes) * time.Minute); err != nil {
		return err
	}
	defer j.Stop()

	model := tui.New(st, w)
	program := tea.NewProgram(model)
	_, err = program.Run()
	return err
}
