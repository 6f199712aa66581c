// Command synthscroll simulates scroll authority handoff between a page
// scroll driver and a card-stack deck.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/synthscroll/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
