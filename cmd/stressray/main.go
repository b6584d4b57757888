package main

import (
	"os"

	"github.com/stressray/stressray/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
