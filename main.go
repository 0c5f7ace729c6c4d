package main

import (
	"os"

	"github.com/rtzll/recap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
