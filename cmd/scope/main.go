// scope is the CLI for managing hierarchical doer/checker agent sessions.
package main

import (
	"os"

	"github.com/adagradschool/scope/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
