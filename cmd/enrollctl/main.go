package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Version information - set during build
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
