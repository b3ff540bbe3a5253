package main

import (
	"os"

	"github.com/dbrainlab/autoindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
