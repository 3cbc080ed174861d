// Command caca analyzes binary data for deviations from randomness: a
// cellular-automaton transform followed by the NIST SP 800-22 statistical
// test battery, per spec.md §6. Grounded on the original source's
// src/main.cpp positional-arg + file-read + exit-code shape, wired
// through a cobra command the way NethermindEth-juno's cmd/juno/main.go
// delegates to a *cobra.Command built elsewhere.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// automaxprocs keeps the default worker count (Config.Threads=0 ->
	// runtime.GOMAXPROCS(0)) honest under a container CPU quota, the same
	// call NethermindEth-juno makes once at process start.
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "caca: automaxprocs: %v\n", err)
	}

	os.Exit(Execute())
}
