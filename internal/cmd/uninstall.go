package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/diag"
	"github.com/adagradschool/scope/internal/scopepath"
)

var uninstallForce bool
var uninstallGlobal bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the .scope directory and everything under it",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallForce, "force", false, "skip the confirmation and remove immediately")
	uninstallCmd.Flags().BoolVar(&uninstallGlobal, "global", false, "remove the global scope root instead of the project one")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	var root string
	var err error
	if uninstallGlobal {
		root, err = scopepath.Global()
	} else {
		root, err = scopepath.ProjectFromCwd()
	}
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
		fmt.Fprintf(os.Stdout, "%s does not exist, nothing to do\n", root)
		return nil
	}

	if !uninstallForce {
		return diag.New(diag.KindFatal, "refusing to remove "+root+" without --force").
			WithFix("re-run with --force to confirm deletion")
	}

	if err := os.RemoveAll(root); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "removed %s\n", root)
	return nil
}
