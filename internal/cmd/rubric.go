package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adagradschool/scope/internal/rubric"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric <file>",
	Short: "Parse a rubric file and print its gates, criteria, and hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runRubric,
}

func init() {
	rootCmd.AddCommand(rubricCmd)
}

func runRubric(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	text := string(data)
	r := rubric.Parse(text)

	fmt.Fprintf(os.Stdout, "hash: %s\n", rubric.Hash(text))
	if r.Title != "" {
		fmt.Fprintf(os.Stdout, "title: %s\n", r.Title)
	}
	fmt.Fprintf(os.Stdout, "gates: %d\n", len(r.Gates))
	for _, g := range r.Gates {
		fmt.Fprintf(os.Stdout, "  - %s\n", g)
	}
	fmt.Fprintf(os.Stdout, "criteria: %d\n", len(r.Criteria))
	for _, c := range r.Criteria {
		fmt.Fprintf(os.Stdout, "  - %s\n", c)
	}
	fmt.Fprintf(os.Stdout, "nice to have: %d\n", len(r.NiceToHave))
	for _, c := range r.NiceToHave {
		fmt.Fprintf(os.Stdout, "  - %s\n", c)
	}
	return nil
}
