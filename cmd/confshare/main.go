package main

import (
	"os"

	"github.com/pterm/pterm"
)

func main() {
	if err := Execute(); err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(1)
	}
}
