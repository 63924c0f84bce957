package main

import (
	"os"

	"github.com/conneroisu/journey/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
