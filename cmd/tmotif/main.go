// Command tmotif searches event graphs for temporal motifs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/tmotif/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// Commands report their own ExitErrors; anything else comes from
	// cobra (unknown flag, wrong argument count).
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
