package main

import (
	"fmt"
	"os"

	"github.com/reoring/vine/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vine:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
