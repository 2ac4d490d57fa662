// Package main is the entry point for the suipic command line client.
package main

import (
	"fmt"
	"os"

	"github.com/suipic/client-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
