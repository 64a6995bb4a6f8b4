// Command inventory queries objects of interest, their trees, listings and
// provenance from the command line. Every command prints JSON to stdout.
package main

import (
	"fmt"
	"os"
)

// Set by ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd(openSession).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
