package main

import (
	"os"

	"github.com/doidoi-app/doidoi-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
