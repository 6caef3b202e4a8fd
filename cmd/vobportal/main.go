package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// usage errors exit with 1
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
