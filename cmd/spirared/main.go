// Command spirared runs the Spirare HTTP service. It is the entry point for
// service managers; `spirare serve` runs the same loop from the CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newDaemonCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
