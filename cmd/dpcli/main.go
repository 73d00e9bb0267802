package main

import (
	"fmt"
	"os"

	"github.com/devplatform/dpcli/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dpcli:", err)
		os.Exit(1)
	}
}
